package missionlog

import (
	_ "embed"
)

const (
	insertSessionSQL = `
INSERT INTO sessions (started_at,
                      pattern,
                      stripe_spacing,
                      wall_width,
                      wall_height,
                      config)
VALUES (?, ?, ?, ?, ?, ?)`

	insertWaypointSQL = `
INSERT INTO waypoints (session_id,
                       seq,
                       stripe,
                       phase,
                       north,
                       east,
                       down,
                       target_speed,
                       tolerance)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertTransitionSQL = `
INSERT INTO transitions (session_id,
                         at,
                         prior_state,
                         next_state,
                         reason)
VALUES (?, ?, ?, ?, ?)`

	insertTrackSQL = `
INSERT INTO track (session_id,
                   at,
                   north,
                   east,
                   down,
                   battery,
                   mode,
                   armed)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    started_at,
    pattern,
    stripe_spacing,
    wall_width,
    wall_height,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    started_at,
    pattern,
    stripe_spacing,
    wall_width,
    wall_height,
    config
FROM sessions
ORDER BY started_at`

	selectWaypointsSQL = `
SELECT
    id,
    session_id,
    seq,
    stripe,
    phase,
    north,
    east,
    down,
    target_speed,
    tolerance
FROM waypoints
WHERE
    session_id = ?
ORDER BY seq`

	selectTransitionsSQL = `
SELECT
    id,
    session_id,
    at,
    prior_state,
    next_state,
    reason
FROM transitions
WHERE
    session_id = ?
ORDER BY at`

	selectTrackSQL = `
SELECT
    id,
    session_id,
    at,
    north,
    east,
    down,
    battery,
    mode,
    armed
FROM track
WHERE
    session_id = ?
ORDER BY at`
)

//go:embed schema.sql
var initSchemaSQL string
