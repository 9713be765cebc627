package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/flightlink"
	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/flightlink/sim"
	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/mission"
	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/missionlog"
	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/wall"
)

const (
	storageDir = "data"

	defaultTrackInterval = 500 * time.Millisecond
)

// Run executes one painting mission: plan the coverage pattern for the
// configured wall, fly it over the flight link and log the run.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	w, err := wall.Load(config.Wall.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading wall geometry: %w", err)
	}

	pose, err := wall.SpawnPoseFromEnv()
	if err != nil {
		return fmt.Errorf("reading spawn pose: %w", err)
	}

	// The launch scripts spawn the vehicle at the wall's bottom-left corner
	// at painting standoff, so that corner is the NED origin.
	pattern := mission.Pattern(config.Mission.Pattern)
	seq, err := mission.Generate(w, flightlink.NED{}, pattern, mission.PlanOptions{
		StripeSpacing:   config.Mission.StripeSpacing,
		Tolerance:       config.Mission.Tolerance,
		GroundClearance: config.Mission.GroundClearance,
		Speeds: mission.Speeds{
			Vertical:    config.Mission.VerticalSpeed,
			Lateral:     config.Mission.LateralSpeed,
			Positioning: config.Mission.PositioningSpeed,
		},
	})
	if err != nil {
		return fmt.Errorf("planning coverage: %w", err)
	}

	logger.Info("coverage planned",
		slog.String("pattern", string(pattern)),
		slog.Int("stripes", seq.StripeCount),
		slog.Int("waypoints", len(seq.Waypoints)),
		slog.String("path", humanize.CommafWithDigits(seq.PathLength(), 1)+"m"),
		slog.Group("spawn",
			slog.Float64("x", pose.X),
			slog.Float64("y", pose.Y),
			slog.Float64("z", pose.Z),
			slog.Float64("yaw", pose.Yaw)))

	var store *missionlog.Store
	var sessionID int64
	if config.Storage.Enabled {
		if store, err = createStore(&config.Storage); err != nil {
			return fmt.Errorf("creating mission log: %w", err)
		}
		defer store.Close()

		if sessionID, err = store.CreateSession(ctx, seq, w.Dimensions.Width, w.Dimensions.Height, config); err != nil {
			return fmt.Errorf("creating mission log session: %w", err)
		}
		if err = store.InsertWaypoints(ctx, sessionID, seq.Waypoints); err != nil {
			return fmt.Errorf("logging planned waypoints: %w", err)
		}
	}

	link := sim.New(sim.Config{
		MaxSpeed:       config.Link.MaxSpeed,
		Battery:        config.Link.Battery,
		DrainPerSecond: config.Link.Drain,
	}, sim.WithLogger(logger))

	monitor := mission.NewMonitor(config.Mission.BatteryFloor,
		secondsToDuration(config.Mission.StaleAfter, 0))

	options := []func(*mission.Controller){mission.WithLogger(logger)}
	if store != nil {
		options = append(options, mission.WithTransitionHook(func(t mission.Transition) {
			if err := store.InsertTransition(context.Background(), sessionID, t); err != nil {
				logger.Warn("failed to log transition", slog.Any("error", err))
			}
		}))
	}

	ctrl := mission.NewController(link, monitor, seq, mission.Config{
		Endpoint:         config.Link.Endpoint,
		TakeoffAltitude:  config.Mission.TakeoffAltitude,
		WaypointTimeout:  secondsToDuration(config.Mission.WaypointTimeout, 0),
		AbortOnTimeout:   config.Mission.AbortOnTimeout,
		HoverTime:        secondsToDuration(config.Mission.HoverTime, 0),
		PositioningSpeed: config.Mission.PositioningSpeed,
		Tolerance:        config.Mission.Tolerance,
	}, options...)

	var sampler *trackSampler
	if store != nil {
		sampler = newTrackSampler(store, sessionID, monitor,
			secondsToDuration(config.Storage.TrackInterval, defaultTrackInterval), logger)
		sampler.start()
	}

	started := time.Now()
	runErr := ctrl.Run(ctx)

	if sampler != nil {
		sampler.stop()
	}

	visited, skipped, total := ctrl.Progress()
	logger.Info("mission finished",
		slog.String("state", ctrl.State().String()),
		slog.Int("visited", visited),
		slog.Int("skipped", skipped),
		slog.Int("total", total),
		slog.String("elapsed", humanize.RelTime(started, time.Now(), "", "")))

	return runErr
}

// trackSampler periodically snapshots the latest telemetry frame into the
// mission log so the flown track can be replayed afterwards.
type trackSampler struct {
	store     *missionlog.Store
	sessionID int64
	monitor   *mission.Monitor
	interval  time.Duration
	logger    *slog.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func newTrackSampler(store *missionlog.Store, sessionID int64, monitor *mission.Monitor, interval time.Duration, logger *slog.Logger) *trackSampler {
	return &trackSampler{
		store:     store,
		sessionID: sessionID,
		monitor:   monitor,
		interval:  interval,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

func (s *trackSampler) start() {
	s.wg.Add(1)
	go s.run()
}

func (s *trackSampler) stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *trackSampler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var batch []flightlink.Frame
	var last time.Time
	for {
		select {
		case <-ticker.C:
			f, ok := s.monitor.Latest()
			if !ok || f.Timestamp.Equal(last) {
				continue
			}
			last = f.Timestamp

			batch = append(batch, f)
			if len(batch) >= 32 {
				s.flush(batch)
				batch = batch[:0]
			}

		case <-s.stopCh:
			if len(batch) > 0 {
				s.flush(batch)
			}
			return
		}
	}
}

func (s *trackSampler) flush(batch []flightlink.Frame) {
	if err := s.store.BatchInsertTrack(context.Background(), s.sessionID, batch); err != nil {
		s.logger.Warn("failed to log track batch", slog.Any("error", err))
	}
}

func createStore(config *StorageConfig) (*missionlog.Store, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	dir := config.DataDirectory
	if dir == "" {
		dir = storageDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(wd, dir)
	}

	stat, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dir, err)
		}
		return nil, fmt.Errorf("checking storage directory '%s': %w", dir, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dir)
	}

	dbPath := filepath.Join(dir, fmt.Sprintf("paint_mission_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return missionlog.New(dbPath), nil
}

func secondsToDuration(sec float64, fallback time.Duration) time.Duration {
	if sec <= 0 {
		return fallback
	}
	return time.Duration(sec * float64(time.Second))
}
