package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/missionlog"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := missionlog.New(config.DBPath)
	defer store.Close()

	return renderCoverage(ctx, store, config, logger)
}

func renderCoverage(ctx context.Context, store *missionlog.Store, config *Config, logger *slog.Logger) error {
	session, err := store.Session(ctx, config.SessionID)
	if err != nil {
		return err
	}
	if session == nil {
		sessions, listErr := store.Sessions(ctx)
		if listErr != nil || len(sessions) == 0 {
			return fmt.Errorf("session %d not found", config.SessionID)
		}

		ids := make([]int64, len(sessions))
		for i, s := range sessions {
			ids[i] = s.ID
		}
		return fmt.Errorf("session %d not found, logged sessions: %v", config.SessionID, ids)
	}

	waypoints, err := store.Waypoints(ctx, config.SessionID)
	if err != nil {
		return err
	}
	track, err := store.Track(ctx, config.SessionID)
	if err != nil {
		return err
	}

	logger.Info("loaded mission log",
		slog.Group("session",
			slog.Int64("id", session.ID),
			slog.String("startedAt", session.StartedAt.Local().Format(time.DateTime)),
			slog.String("pattern", session.Pattern),
			slog.Float64("wallWidth", session.WallWidth),
			slog.Float64("wallHeight", session.WallHeight),
		),
		slog.Int("waypoints", len(waypoints)),
		slog.Int("trackPoints", len(track)))

	if config.Verbose {
		transitions, err := store.Transitions(ctx, config.SessionID)
		if err != nil {
			return err
		}
		for _, tr := range transitions {
			logger.Info("state transition",
				slog.String("at", tr.At.Local().Format(time.DateTime)),
				slog.String("from", tr.PriorState),
				slog.String("to", tr.NextState),
				slog.String("reason", tr.Reason))
		}
	}

	data := NewCoverageData(session, waypoints, track)

	logger.Info("rendering coverage map",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.Float64("scale", config.PixelsPerM),
			slog.Int("cols", data.Cols),
			slog.Int("rows", data.Rows),
		),
		slog.String("painted", fmt.Sprintf("%.1f%%", data.Painted()*100)))

	renderer := NewCoverageRenderer(RenderConfig{
		PixelsPerM:  config.PixelsPerM,
		Annotations: !config.NoAnnotations,
	})

	img, err := renderer.Render(data)
	if err != nil {
		return fmt.Errorf("rendering coverage map: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}
