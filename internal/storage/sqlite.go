package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ai-calories/internal/models"
)

// MinFuzzyQueryLen is the shortest query FuzzySearchOne will accept.
const MinFuzzyQueryLen = 3

type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db, now: time.Now}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS food (
        name TEXT PRIMARY KEY,
        calories REAL NOT NULL DEFAULT 0,
        protein REAL NOT NULL DEFAULT 0,
        fat REAL NOT NULL DEFAULT 0,
        carbs REAL NOT NULL DEFAULT 0,
        source TEXT NOT NULL DEFAULT 'manual'
    );

    CREATE TABLE IF NOT EXISTS consumption_log (
        seq INTEGER PRIMARY KEY AUTOINCREMENT,
        id TEXT NOT NULL UNIQUE,
        date TEXT NOT NULL,
        name TEXT NOT NULL,
        calories REAL NOT NULL,
        protein REAL NOT NULL,
        fat REAL NOT NULL,
        carbs REAL NOT NULL,
        source TEXT NOT NULL,
        logged_at TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_consumption_log_date ON consumption_log(date);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Get returns the record stored under name, matched case-insensitively.
// A miss returns nil, nil.
func (s *SQLiteStorage) Get(ctx context.Context, name string) (*models.NutritionRecord, error) {
	key := models.NormalizeName(name)
	if key == "" {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx, `
        SELECT name, calories, protein, fat, carbs, source
        FROM food
        WHERE name = ?
    `, key)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food %q: %w", key, err)
	}
	return rec, nil
}

// FindCandidates returns up to limit records whose name contains substring,
// shortest names first.
func (s *SQLiteStorage) FindCandidates(ctx context.Context, substring string, limit int) ([]models.NutritionRecord, error) {
	query := models.NormalizeName(substring)
	if query == "" || limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT name, calories, protein, fat, carbs, source
        FROM food
        WHERE name LIKE ? ESCAPE '\'
        ORDER BY LENGTH(name), name
        LIMIT ?
    `, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var out []models.NutritionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// FuzzySearchOne returns the shortest record containing substring. Queries
// shorter than MinFuzzyQueryLen never match.
func (s *SQLiteStorage) FuzzySearchOne(ctx context.Context, substring string) (*models.NutritionRecord, error) {
	query := models.NormalizeName(substring)
	if len([]rune(query)) < MinFuzzyQueryLen {
		return nil, nil
	}
	found, err := s.FindCandidates(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// Put inserts or fully replaces the record keyed by its normalized name.
func (s *SQLiteStorage) Put(ctx context.Context, rec models.NutritionRecord) error {
	key := rec.Key()
	if key == "" {
		return errors.New("food name is required")
	}
	rec = rec.Sanitized()
	if rec.Source == "" {
		rec.Source = models.SourceManual
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO food (name, calories, protein, fat, carbs, source)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET
            calories = excluded.calories,
            protein = excluded.protein,
            fat = excluded.fat,
            carbs = excluded.carbs,
            source = excluded.source
    `, key, rec.Calories, rec.Protein, rec.Fat, rec.Carbs, string(rec.Source))
	if err != nil {
		return fmt.Errorf("failed to put food %q: %w", key, err)
	}
	return nil
}

// AppendLog writes a consumption entry for date. The record is copied into
// the log row, so later Put calls do not alter it.
func (s *SQLiteStorage) AppendLog(ctx context.Context, date string, rec models.NutritionRecord) (models.ConsumptionLogEntry, error) {
	entry := models.ConsumptionLogEntry{
		ID:       uuid.NewString(),
		Date:     date,
		Record:   rec.Sanitized(),
		LoggedAt: s.now().UTC().Truncate(time.Second),
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO consumption_log (id, date, name, calories, protein, fat, carbs, source, logged_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, entry.ID, entry.Date, entry.Record.Name, entry.Record.Calories, entry.Record.Protein,
		entry.Record.Fat, entry.Record.Carbs, string(entry.Record.Source), entry.LoggedAt.Format(time.RFC3339))
	if err != nil {
		return models.ConsumptionLogEntry{}, fmt.Errorf("failed to append log entry: %w", err)
	}
	return entry, nil
}

// DailyLog returns the entries of date in insertion order.
func (s *SQLiteStorage) DailyLog(ctx context.Context, date string) ([]models.ConsumptionLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, date, name, calories, protein, fat, carbs, source, logged_at
        FROM consumption_log
        WHERE date = ?
        ORDER BY seq
    `, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query log: %w", err)
	}
	defer rows.Close()

	var entries []models.ConsumptionLogEntry
	for rows.Next() {
		var e models.ConsumptionLogEntry
		var sourceStr, loggedAtStr string

		err := rows.Scan(&e.ID, &e.Date, &e.Record.Name, &e.Record.Calories, &e.Record.Protein,
			&e.Record.Fat, &e.Record.Carbs, &sourceStr, &loggedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		e.Record.Source = models.Source(sourceStr)
		if e.LoggedAt, err = time.Parse(time.RFC3339, loggedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse logged_at: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.NutritionRecord, error) {
	rec := &models.NutritionRecord{}
	var sourceStr string
	if err := row.Scan(&rec.Name, &rec.Calories, &rec.Protein, &rec.Fat, &rec.Carbs, &sourceStr); err != nil {
		return nil, err
	}
	rec.Source = models.Source(sourceStr)
	return rec, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
