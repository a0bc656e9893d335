package vectorstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corpusidx/corpusidx/pkg/types"
)

// dimensionMetaKey is the index_meta key recording the schema's vector
// dimensionality, fixed at first Open.
const dimensionMetaKey = "dimension"

// SQLiteStore implements Store over a single SQLite database file. Vectors
// are stored as little-endian float32 blobs; similarity search is a
// brute-force cosine scan ranked in Go, which is adequate for a single
// local corpus.
type SQLiteStore struct {
	path   string
	logger *zap.Logger
	db     *sql.DB
}

// NewSQLiteStore creates a SQLiteStore for the given database file. The
// database is opened lazily by Open.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store path is required")
	}
	return &SQLiteStore{path: path, logger: logger}, nil
}

// openDatabase opens the SQLite file with WAL and a single writer, which
// is the configuration SQLite performs best under.
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return db, nil
}

// Open implements Store.
func (s *SQLiteStore) Open(ctx context.Context, sampleVector []float32) (bool, error) {
	db, err := openDatabase(s.path)
	if err != nil {
		return false, fmt.Errorf("open database: %w", err)
	}

	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return false, fmt.Errorf("apply migrations: %w", err)
	}

	// The index existed if its dimensionality was already fixed. When it
	// exists it is opened as-is; no check against the sample is performed.
	var stored string
	err = db.QueryRowContext(ctx, "SELECT value FROM index_meta WHERE key = ?", dimensionMetaKey).Scan(&stored)
	existed := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		_ = db.Close()
		return false, fmt.Errorf("read index meta: %w", err)
	}

	if !existed {
		_, err = db.ExecContext(ctx, "INSERT INTO index_meta (key, value) VALUES (?, ?)",
			dimensionMetaKey, strconv.Itoa(len(sampleVector)))
		if err != nil {
			_ = db.Close()
			return false, fmt.Errorf("fix index dimension: %w", err)
		}
	}

	s.db = db
	s.logger.Info("vector index open",
		zap.String("backend", BackendSQLite),
		zap.String("path", s.path),
		zap.String("driver", DriverName),
		zap.Bool("existed", existed),
	)
	return existed, nil
}

// DeleteBySource implements Store. The source path is bound as a query
// parameter; it never appears inside the SQL text.
func (s *SQLiteStore) DeleteBySource(ctx context.Context, source string) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE source = ?", source); err != nil {
		return fmt.Errorf("delete by source %s: %w", source, err)
	}
	return nil
}

// Insert implements Store. The batch is written inside one transaction so
// a mid-batch failure leaves none of it visible.
func (s *SQLiteStore) Insert(ctx context.Context, records []Record) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO records (id, source, ordinal, content, vector, dimension) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		blob := serializeVector(rec.Vector)
		if _, err := stmt.ExecContext(ctx, id, rec.Source, rec.Ordinal, rec.Text, blob, len(rec.Vector)); err != nil {
			return fmt.Errorf("insert record %s/%d: %w", rec.Source, rec.Ordinal, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// Search implements Store. All candidate vectors are scanned and ranked by
// cosine similarity in Go.
func (s *SQLiteStore) Search(ctx context.Context, vector []float32, limit int) ([]types.SearchResult, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT source, content, vector FROM records")
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []candidate
	for rows.Next() {
		var source, content string
		var blob []byte
		if err := rows.Scan(&source, &content, &blob); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		stored := deserializeVector(blob)
		if len(stored) != len(vector) {
			continue // dimension mismatch, skip
		}

		candidates = append(candidates, candidate{
			source: source,
			text:   content,
			score:  cosineSimilarity(vector, stored),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortCandidates(candidates)

	if limit > len(candidates) {
		limit = len(candidates)
	}
	results := make([]types.SearchResult, limit)
	for i := 0; i < limit; i++ {
		results[i] = types.SearchResult{
			Source: candidates[i].source,
			Text:   candidates[i].text,
			Score:  candidates[i].score,
			Rank:   i + 1,
		}
	}
	return results, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, ErrNotOpen
	}
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
