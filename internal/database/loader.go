package database

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxRowBytes bounds a single TSV row.
const maxRowBytes = 16 * 1024 * 1024

// TableSpec describes a target table. Columns must match the TSV
// header exactly; the first column is the primary key.
type TableSpec struct {
	Name    string
	Columns []string
}

// LoadStats reports the outcome of loading one TSV file.
type LoadStats struct {
	Rows      int
	Inserted  int
	Conflicts int
	Malformed int
}

// Loader imports flattened TSV tables into PostgreSQL.
type Loader struct {
	db        *pgxpool.Pool
	batchSize int
	logger    *slog.Logger
}

// NewLoader creates a Loader writing through the given pool.
func NewLoader(db *pgxpool.Pool, batchSize int, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &Loader{db: db, batchSize: batchSize, logger: logger}
}

// EnsureTable creates the target table if it does not exist. Every
// column is text; the schema mirrors the flattened TSV layout.
func (l *Loader) EnsureTable(ctx context.Context, spec TableSpec) error {
	if len(spec.Columns) == 0 {
		return fmt.Errorf("table %s: no columns", spec.Name)
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(pgx.Identifier{spec.Name}.Sanitize())
	b.WriteString(" (")
	for i, col := range spec.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{col}.Sanitize())
		b.WriteString(" text")
	}
	b.WriteString(", PRIMARY KEY (")
	b.WriteString(pgx.Identifier{spec.Columns[0]}.Sanitize())
	b.WriteString("))")

	if _, err := l.db.Exec(ctx, b.String()); err != nil {
		return fmt.Errorf("create table %s: %w", spec.Name, err)
	}
	return nil
}

// LoadTSV streams a flattened TSV file into the target table. The
// header row must match spec.Columns. Rows with the wrong column count
// are counted as malformed and skipped.
func (l *Loader) LoadTSV(ctx context.Context, spec TableSpec, path string) (LoadStats, error) {
	var stats LoadStats

	f, err := os.Open(path)
	if err != nil {
		return stats, fmt.Errorf("opening table file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxRowBytes)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return stats, fmt.Errorf("reading header from %s: %w", path, err)
		}
		return stats, fmt.Errorf("table file %s is empty", path)
	}
	header := strings.Split(scanner.Text(), "\t")
	if err := checkHeader(header, spec.Columns); err != nil {
		return stats, fmt.Errorf("table file %s: %w", path, err)
	}

	insertSQL := buildInsertSQL(spec)
	pending := make([][]string, 0, l.batchSize)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		inserted, conflicts, err := l.insertBatch(ctx, insertSQL, pending)
		if err != nil {
			return err
		}
		stats.Inserted += inserted
		stats.Conflicts += conflicts
		pending = pending[:0]
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		stats.Rows++

		values := strings.Split(line, "\t")
		if len(values) != len(spec.Columns) {
			l.logger.Warn("skipping malformed row",
				"table", spec.Name, "row", stats.Rows, "columns", len(values))
			stats.Malformed++
			continue
		}

		pending = append(pending, values)
		if len(pending) >= l.batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading table file %s: %w", path, err)
	}
	if err := flush(); err != nil {
		return stats, err
	}

	l.logger.Info("table loaded",
		"table", spec.Name,
		"rows", stats.Rows,
		"inserted", stats.Inserted,
		"conflicts", stats.Conflicts,
		"malformed", stats.Malformed)
	return stats, nil
}

// insertBatch inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (l *Loader) insertBatch(ctx context.Context, sql string, rows [][]string) (inserted, conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, values := range rows {
		args := make([]any, len(values))
		for i, v := range values {
			args[i] = v
		}
		batch.Queue(sql, args...)
	}

	results := l.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return inserted, conflicts, fmt.Errorf("batch insert: %w", err)
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		} else {
			inserted++
		}
	}
	return inserted, conflicts, nil
}

func buildInsertSQL(spec TableSpec) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgx.Identifier{spec.Name}.Sanitize())
	b.WriteString(" (")
	for i, col := range spec.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{col}.Sanitize())
	}
	b.WriteString(") VALUES (")
	for i := range spec.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", i+1)
	}
	b.WriteString(") ON CONFLICT (")
	b.WriteString(pgx.Identifier{spec.Columns[0]}.Sanitize())
	b.WriteString(") DO NOTHING")
	return b.String()
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("header has %d columns, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("header column %d is %q, want %q", i, got[i], want[i])
		}
	}
	return nil
}
