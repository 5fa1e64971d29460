package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/formscan/formscan/internal/model"
)

// dbFileName is the SQLite file created under the data directory.
const dbFileName = "formscan.db"

// HistoryDB stores analysis reports and model records locally.
// It manages connection pooling and provides methods for CRUD operations.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB under dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Analysis records store one analyze run per row, full report as JSON
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document TEXT NOT NULL,
		model_id TEXT NOT NULL,
		analyzed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		content_type TEXT,
		size_bytes INTEGER,
		field_count INTEGER,
		table_count INTEGER,
		failed INTEGER DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_document ON analyses(document);
	CREATE INDEX IF NOT EXISTS idx_analyses_model ON analyses(model_id);
	CREATE INDEX IF NOT EXISTS idx_analyses_timestamp ON analyses(analyzed_at);

	-- Model records mirror the account's model list as last observed
	CREATE TABLE IF NOT EXISTS models (
		model_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		created_at TEXT,
		updated_at TEXT,
		recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// InsertAnalysis stores one analysis report and returns its row ID.
func (hdb *HistoryDB) InsertAnalysis(ctx context.Context, report *model.AnalysisReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	failed := 0
	if report.Failed() {
		failed = 1
	}

	query := `
	INSERT INTO analyses (document, model_id, analyzed_at, content_type, size_bytes, field_count, table_count, failed, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		report.Document,
		report.ModelID.String(),
		report.AnalyzedAt.UTC().Format("2006-01-02 15:04:05"),
		report.ContentType,
		report.SizeBytes,
		report.FieldCount(),
		report.TableCount(),
		failed,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis: %w", err)
	}

	return result.LastInsertId()
}

// AnalysisMetadata summarizes one stored analysis without the full report.
type AnalysisMetadata struct {
	// ID is the row ID in the database.
	ID int64

	// Document is the analyzed document path.
	Document string

	// ModelID is the model the analysis used.
	ModelID string

	// AnalyzedAt is when the analysis ran.
	AnalyzedAt time.Time

	// FieldCount is the number of extracted fields.
	FieldCount int

	// TableCount is the number of detected tables.
	TableCount int

	// Failed reports whether the analyze call failed.
	Failed bool
}

// ListAnalyses returns metadata of stored analyses, newest first.
// An empty document filter returns all analyses.
func (hdb *HistoryDB) ListAnalyses(ctx context.Context, document string) ([]AnalysisMetadata, error) {
	query := `
	SELECT id, document, model_id, analyzed_at, field_count, table_count, failed
	FROM analyses
	WHERE 1=1
	`
	args := make([]any, 0)

	if document != "" {
		query += " AND document = ?"
		args = append(args, document)
	}
	query += " ORDER BY analyzed_at DESC, id DESC"

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var results []AnalysisMetadata
	for rows.Next() {
		var meta AnalysisMetadata
		var timestamp string
		var failed int

		if err := rows.Scan(&meta.ID, &meta.Document, &meta.ModelID, &timestamp,
			&meta.FieldCount, &meta.TableCount, &failed); err != nil {
			return nil, fmt.Errorf("failed to scan analysis metadata: %w", err)
		}
		meta.AnalyzedAt = parseTimestamp(timestamp)
		meta.Failed = failed != 0
		results = append(results, meta)
	}

	return results, rows.Err()
}

// LatestAnalyses returns up to n most recent stored reports for document,
// newest first. Malformed stored reports are skipped.
func (hdb *HistoryDB) LatestAnalyses(ctx context.Context, document string, n int) ([]*model.AnalysisReport, error) {
	query := `
	SELECT report_json FROM analyses
	WHERE document = ?
	ORDER BY analyzed_at DESC, id DESC
	LIMIT ?
	`

	rows, err := hdb.db.QueryContext(ctx, query, document, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get analyses: %w", err)
	}
	defer rows.Close()

	var reports []*model.AnalysisReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.AnalysisReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// GetAnalysisByID retrieves one stored report by its row ID.
// Returns nil without error when no row matches.
func (hdb *HistoryDB) GetAnalysisByID(ctx context.Context, id int64) (*model.AnalysisReport, error) {
	query := `
	SELECT report_json FROM analyses
	WHERE id = ?
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var report model.AnalysisReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// RecordModels upserts the account's model list into the local mirror.
func (hdb *HistoryDB) RecordModels(ctx context.Context, list *model.ModelList) error {
	query := `
	INSERT INTO models (model_id, status, created_at, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(model_id) DO UPDATE SET
		status = excluded.status,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at,
		recorded_at = CURRENT_TIMESTAMP
	`

	for _, info := range list.Models {
		_, err := hdb.db.ExecContext(ctx, query,
			info.ModelID.String(),
			info.Status.String(),
			info.CreatedAt.UTC().Format(time.RFC3339),
			info.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to record model: %w", err)
		}
	}
	return nil
}

// StoredModel is one locally mirrored model record.
type StoredModel struct {
	// ModelID identifies the model.
	ModelID string

	// Status is the last observed training status.
	Status string

	// CreatedAt is when training was requested.
	CreatedAt time.Time

	// UpdatedAt is when the service last changed the record.
	UpdatedAt time.Time

	// RecordedAt is when this mirror row was last refreshed.
	RecordedAt time.Time
}

// ListStoredModels returns the locally mirrored model records, newest first.
func (hdb *HistoryDB) ListStoredModels(ctx context.Context) ([]StoredModel, error) {
	query := `
	SELECT model_id, status, created_at, updated_at, recorded_at
	FROM models
	ORDER BY created_at DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	var results []StoredModel
	for rows.Next() {
		var m StoredModel
		var createdAt, updatedAt, recordedAt string

		if err := rows.Scan(&m.ModelID, &m.Status, &createdAt, &updatedAt, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		m.CreatedAt = parseTimestamp(createdAt)
		m.UpdatedAt = parseTimestamp(updatedAt)
		m.RecordedAt = parseTimestamp(recordedAt)
		results = append(results, m)
	}

	return results, rows.Err()
}

// DeleteStoredModel removes one model from the local mirror.
func (hdb *HistoryDB) DeleteStoredModel(ctx context.Context, modelID string) error {
	if _, err := hdb.db.ExecContext(ctx, "DELETE FROM models WHERE model_id = ?", modelID); err != nil {
		return fmt.Errorf("failed to delete model record: %w", err)
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
