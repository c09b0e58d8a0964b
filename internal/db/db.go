// Package db persists analysis runs to SQLite: one row per run plus the
// per-room outcomes, so past results can be listed and re-exported without
// refitting.
package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hallsdata/energy.report/internal/energy"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the SQLite database at path and applies any
// pending schema migrations.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// RunSummary is the stored header of one analysis run.
type RunSummary struct {
	RunID        string    `json:"run_id"`
	BedType      string    `json:"bed_type"`
	Month        string    `json:"month"`
	Day          int       `json:"day"`
	TotalRooms   int       `json:"total_rooms"`
	AnomalyCount int       `json:"anomaly_count"`
	TotalEnergy  float64   `json:"total_energy"`
	AvgEnergy    float64   `json:"avg_energy"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *RunSummary) String() string {
	return fmt.Sprintf("Run %s: %s-bed %s day %d, %d rooms, %d anomalies",
		r.RunID, r.BedType, r.Month, r.Day, r.TotalRooms, r.AnomalyCount)
}

// RoomResult is the stored outcome for one room within a run.
type RoomResult struct {
	RunID           string  `json:"run_id"`
	RoomNo          int     `json:"room_no"`
	TotalEnergy     float64 `json:"total_energy"`
	Anomaly         bool    `json:"anomaly"`
	AnomalyType     string  `json:"anomaly_type"`
	Confidence      float64 `json:"confidence"`
	PredictedEnergy float64 `json:"predicted_energy"`
}

// RecordRun stores a completed analysis with its per-room outcomes and
// returns the generated run ID.
func (db *DB) RecordRun(bedType, month string, day int, result *energy.Result) (string, error) {
	runID := uuid.NewString()
	s := result.Insights.Summary

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO analysis_runs (
			run_id, bed_type, month, day, total_rooms, anomaly_count,
			total_energy, avg_energy
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, bedType, month, day, s.TotalRooms, s.AnomalyCount,
		s.TotalEnergy, s.AvgEnergy,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO room_results (
			run_id, room_no, total_energy, anomaly, anomaly_type,
			confidence, predicted_energy
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare room insert: %w", err)
	}
	defer stmt.Close()

	for i := range result.Rooms {
		room := &result.Rooms[i]
		_, err = stmt.Exec(
			runID, room.RoomNo, room.Total, room.Final, room.AnomalyType,
			room.Confidence, room.Ensemble,
		)
		if err != nil {
			return "", fmt.Errorf("insert room %d: %w", room.RoomNo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// Runs returns the most recent run summaries, newest first.
func (db *DB) Runs(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(
		`SELECT run_id, bed_type, month, day, total_rooms, anomaly_count,
			total_energy, avg_energy, created_at
		FROM analysis_runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(
			&r.RunID, &r.BedType, &r.Month, &r.Day, &r.TotalRooms,
			&r.AnomalyCount, &r.TotalEnergy, &r.AvgEnergy, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// RunRooms returns the stored per-room outcomes for one run, ordered by room.
func (db *DB) RunRooms(runID string) ([]RoomResult, error) {
	rows, err := db.Query(
		`SELECT run_id, room_no, total_energy, anomaly, anomaly_type,
			confidence, predicted_energy
		FROM room_results WHERE run_id = ? ORDER BY room_no`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []RoomResult
	for rows.Next() {
		var r RoomResult
		if err := rows.Scan(
			&r.RunID, &r.RoomNo, &r.TotalEnergy, &r.Anomaly, &r.AnomalyType,
			&r.Confidence, &r.PredictedEnergy,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
