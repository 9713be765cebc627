// Package missionlog persists mission runs to a sqlite database: the planned
// waypoint sequence, every state transition and the flown track. The painter
// writes it during a mission; the coverage map tool reads it afterwards.
package missionlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/flightlink"
	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/mission"
)

// Store handles mission log database operations. Writes go through a single
// WAL connection, reads through a separate read-only connection; both are
// opened lazily.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New creates a store for the database at dbPath. The file and schema are
// created on first write.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, query string) error {
	_, err := db.Exec(query)
	return err
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *Store) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", s.dbPath))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// Close closes both database connections. Safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.writeDB != nil {
			if err := s.writeDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing write connection: %w", err))
			}
		}
		if s.readDB != nil {
			if err := s.readDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing read connection: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
	})

	return s.closeErr
}

// CreateSession records a new mission run and returns its identifier. The
// config argument can be a string, []byte or any JSON-serializable value.
func (s *Store) CreateSession(ctx context.Context, seq *mission.Sequence, wallWidth, wallHeight float64, config any) (int64, error) {
	db, err := s.getWriteDB()
	if err != nil {
		return 0, err
	}

	var conf sql.NullString
	switch v := config.(type) {
	case nil:
		// leave NULL
	case string:
		conf = sql.NullString{String: v, Valid: true}
	case []byte:
		conf = sql.NullString{String: string(v), Valid: true}
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return 0, fmt.Errorf("marshaling session config: %w", err)
		}
		conf = sql.NullString{String: string(data), Valid: true}
	}

	res, err := db.ExecContext(ctx, insertSessionSQL,
		time.Now().UTC(), string(seq.Pattern), seq.StripeSpacing, wallWidth, wallHeight, conf)
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting session ID: %w", err)
	}
	return id, nil
}

// InsertWaypoints stores the planned sequence for a session in one
// transaction.
func (s *Store) InsertWaypoints(ctx context.Context, sessionID int64, waypoints []mission.Waypoint) (err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, insertWaypointSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for i, wp := range waypoints {
		if _, err = stmt.ExecContext(ctx, sessionID, i, wp.Stripe, wp.Phase.String(),
			wp.Position.North, wp.Position.East, wp.Position.Down,
			wp.TargetSpeed, wp.Tolerance); err != nil {
			return fmt.Errorf("inserting waypoint %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// InsertTransition stores one state transition.
func (s *Store) InsertTransition(ctx context.Context, sessionID int64, t mission.Transition) error {
	db, err := s.getWriteDB()
	if err != nil {
		return err
	}

	if _, err = db.ExecContext(ctx, insertTransitionSQL,
		sessionID, t.At.UTC(), t.From.String(), t.To.String(), t.Reason); err != nil {
		return fmt.Errorf("inserting transition: %w", err)
	}
	return nil
}

// BatchInsertTrack stores a batch of track points in one transaction.
func (s *Store) BatchInsertTrack(ctx context.Context, sessionID int64, frames []flightlink.Frame) (err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, insertTrackSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for _, f := range frames {
		if _, err = stmt.ExecContext(ctx, sessionID, f.Timestamp.UTC(),
			f.Position.North, f.Position.East, f.Position.Down,
			f.Battery, string(f.Mode), f.Armed); err != nil {
			return fmt.Errorf("inserting track frame: %w", err)
		}
	}

	return tx.Commit()
}

// Session retrieves one mission session, nil if not found.
func (s *Store) Session(ctx context.Context, id int64) (*SessionRecord, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, err
	}

	var rec SessionRecord
	err = db.QueryRowContext(ctx, selectSessionSQL, id).Scan(&rec.ID, &rec.StartedAt,
		&rec.Pattern, &rec.StripeSpacing, &rec.WallWidth, &rec.WallHeight, &rec.Config)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session %d: %w", id, err)
	}
	return &rec, nil
}

// Sessions returns all logged sessions ordered by start time.
func (s *Store) Sessions(ctx context.Context) (_ []*SessionRecord, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer closeWithError(rows, &err)

	var sessions []*SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err = rows.Scan(&rec.ID, &rec.StartedAt, &rec.Pattern, &rec.StripeSpacing,
			&rec.WallWidth, &rec.WallHeight, &rec.Config); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, &rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

// Waypoints returns the planned sequence of a session in plan order.
func (s *Store) Waypoints(ctx context.Context, sessionID int64) (_ []WaypointRecord, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectWaypointsSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying waypoints: %w", err)
	}
	defer closeWithError(rows, &err)

	var waypoints []WaypointRecord
	for rows.Next() {
		var rec WaypointRecord
		if err = rows.Scan(&rec.ID, &rec.SessionID, &rec.Seq, &rec.Stripe, &rec.Phase,
			&rec.North, &rec.East, &rec.Down, &rec.TargetSpeed, &rec.Tolerance); err != nil {
			return nil, fmt.Errorf("scanning waypoint: %w", err)
		}
		waypoints = append(waypoints, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating waypoints: %w", err)
	}
	return waypoints, nil
}

// Transitions returns the state transitions of a session in time order.
func (s *Store) Transitions(ctx context.Context, sessionID int64) (_ []TransitionRecord, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectTransitionsSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying transitions: %w", err)
	}
	defer closeWithError(rows, &err)

	var transitions []TransitionRecord
	for rows.Next() {
		var rec TransitionRecord
		if err = rows.Scan(&rec.ID, &rec.SessionID, &rec.At,
			&rec.PriorState, &rec.NextState, &rec.Reason); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}
		transitions = append(transitions, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transitions: %w", err)
	}
	return transitions, nil
}

// Track returns the flown track of a session in time order.
func (s *Store) Track(ctx context.Context, sessionID int64) (_ []TrackPoint, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectTrackSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying track: %w", err)
	}
	defer closeWithError(rows, &err)

	var track []TrackPoint
	for rows.Next() {
		var rec TrackPoint
		if err = rows.Scan(&rec.ID, &rec.SessionID, &rec.At,
			&rec.North, &rec.East, &rec.Down,
			&rec.Battery, &rec.Mode, &rec.Armed); err != nil {
			return nil, fmt.Errorf("scanning track point: %w", err)
		}
		track = append(track, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating track: %w", err)
	}
	return track, nil
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}
