// internal/adapters/export/history.go
package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Berrypatches/IntelSleuth/internal/core/domain"
	"github.com/Berrypatches/IntelSleuth/internal/platform/logx"
)

// HistoryExporter persiste cada consulta y sus entidades en una base
// SQLite local. La escritura es best-effort: un fallo se registra y no
// invalida el reporte.
type HistoryExporter struct {
	db     *sql.DB
	logger logx.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS queries (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	hash         TEXT NOT NULL,
	raw          TEXT NOT NULL,
	query_type   TEXT NOT NULL,
	summary      TEXT NOT NULL,
	entity_count INTEGER NOT NULL,
	elapsed_ms   INTEGER NOT NULL,
	created_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_queries_hash ON queries(hash);

CREATE TABLE IF NOT EXISTS results (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	query_id INTEGER NOT NULL REFERENCES queries(id) ON DELETE CASCADE,
	category TEXT NOT NULL,
	value    TEXT NOT NULL,
	source   TEXT NOT NULL,
	title    TEXT,
	url      TEXT,
	context  TEXT
);
CREATE INDEX IF NOT EXISTS idx_results_query ON results(query_id);
`

// NewHistoryExporter abre (o crea) la base de historial en la ruta dada.
func NewHistoryExporter(path string, logger logx.Logger) (*HistoryExporter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &HistoryExporter{
		db:     db,
		logger: logger.With("exporter", "history"),
	}, nil
}

// Name retorna el nombre del exporter.
func (h *HistoryExporter) Name() string { return "history" }

// Close cierra la base de datos.
func (h *HistoryExporter) Close() error { return h.db.Close() }

// Export persiste la consulta y sus entidades en una transacción.
func (h *HistoryExporter) Export(ctx context.Context, report *domain.Report) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO queries (hash, raw, query_type, summary, entity_count, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.Query.Hash,
		report.Query.Raw,
		report.Query.Type.String(),
		report.Summary,
		report.Results.Total(),
		report.Elapsed.Milliseconds(),
		report.GeneratedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}

	queryID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (query_id, category, value, source, title, url, context)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}
	defer stmt.Close()

	for _, cat := range report.Results.NonEmpty() {
		for _, e := range report.Results.Get(cat) {
			if _, err := stmt.ExecContext(ctx,
				queryID, string(e.Category), e.Value, e.Source, e.Title, e.URL, e.Context,
			); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}

	h.logger.Debug("query persisted", "hash", report.Query.Hash[:12], "entities", report.Results.Total())
	return nil
}

// HistoryEntry es una fila del historial de consultas.
type HistoryEntry struct {
	ID          int64
	Raw         string
	QueryType   string
	EntityCount int
	ElapsedMS   int64
	CreatedAt   time.Time
}

// ListRecent retorna las consultas más recientes, de la más nueva a la
// más vieja.
func (h *HistoryExporter) ListRecent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT id, raw, query_type, entity_count, elapsed_ms, created_at
		 FROM queries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Raw, &e.QueryType, &e.EntityCount, &e.ElapsedMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
