// Package repository persists validated reports in SQLite.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pgx-risk-engine/internal/domain"
)

// SQLiteReportStore implements domain.ReportStore using SQLite.
type SQLiteReportStore struct {
	db *sql.DB
}

// NewSQLiteReportStore creates the store, its database file, and schema if
// they don't exist.
func NewSQLiteReportStore(dbPath string) (*SQLiteReportStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteReportStore{db: db}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL,
		drug TEXT NOT NULL,
		risk_label TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_reports_patient_id ON reports(patient_id);
	CREATE INDEX IF NOT EXISTS idx_reports_drug ON reports(drug);
	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Save stores one validated report. Reports are immutable; every save is an
// insert.
func (s *SQLiteReportStore) Save(ctx context.Context, report *domain.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO reports (id, patient_id, drug, risk_label, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		uuid.NewString(), report.PatientID, report.Drug, string(report.RiskAssessment.RiskLabel), string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// ListByPatient returns all reports stored for a patient ID, oldest first.
func (s *SQLiteReportStore) ListByPatient(ctx context.Context, patientID string) ([]domain.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payload FROM reports WHERE patient_id = ? ORDER BY created_at ASC",
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		var report domain.Report
		if err := json.Unmarshal([]byte(payload), &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stored report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteReportStore) Close() error {
	return s.db.Close()
}
