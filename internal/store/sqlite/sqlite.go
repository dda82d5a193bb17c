package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/nulzo/netstats/internal/store"
	"github.com/nulzo/netstats/internal/store/model"
)

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB // Required for starting new transactions
	executor DB       // Used for actual queries (can be *sqlx.DB or *sqlx.Tx)
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo *SqliteRepository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	txRepo := &SqliteRepository{
		db:       r.db,
		executor: tx,
	}

	if err := fn(txRepo); err != nil {
		// attempt rollback, but prioritize original error
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepository) Usage() store.UsageRepository {
	return &usageRepo{db: r.executor}
}

// InsertRecords stores records in one transaction. It backs the seed
// command and tests; the HTTP surface never writes.
func (r *SqliteRepository) InsertRecords(ctx context.Context, records []model.UsageRecord) error {
	query := `
	INSERT INTO usage_records (
		date, connections, online_time,
		megabytes_sent, megabytes_received, megabytes_total
	) VALUES (
		:date, :connections, :online_time,
		:megabytes_sent, :megabytes_received, :megabytes_total
	)`

	return r.WithTx(ctx, func(tx *SqliteRepository) error {
		for _, rec := range records {
			// the range filter compares text, so every row must share one zone
			rec.Date = rec.Date.UTC()
			if _, err := tx.executor.NamedExecContext(ctx, query, rec); err != nil {
				return fmt.Errorf("insert record %s: %w", rec.Date.Format(time.DateOnly), err)
			}
		}
		return nil
	})
}

type usageRepo struct {
	db DB
}

// totalsRow mirrors the aggregate columns. MIN(date) loses the column's
// declared type, so the driver hands it back as text.
type totalsRow struct {
	SinceDate              sql.NullString `db:"since_date"`
	Items                  int64          `db:"items"`
	TotalConnections       int64          `db:"total_connections"`
	TotalOnlineTime        int64          `db:"total_online_time"`
	TotalMegabytesSent     float64        `db:"total_megabytes_sent"`
	TotalMegabytesReceived float64        `db:"total_megabytes_received"`
	TotalMegabytes         float64        `db:"total_megabytes"`
}

func (r *usageRepo) Totals(ctx context.Context, since *time.Time) (*model.AggregateResult, error) {
	query := `
		SELECT
			MIN(date) AS since_date,
			COUNT(*) AS items,
			COALESCE(SUM(connections), 0) AS total_connections,
			COALESCE(SUM(online_time), 0) AS total_online_time,
			COALESCE(SUM(megabytes_sent), 0) AS total_megabytes_sent,
			COALESCE(SUM(megabytes_received), 0) AS total_megabytes_received,
			COALESCE(SUM(megabytes_total), 0) AS total_megabytes
		FROM usage_records`
	query, args := withSince(query, since)

	var row totalsRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, err
	}

	result := &model.AggregateResult{
		Items:                  row.Items,
		TotalConnections:       row.TotalConnections,
		TotalOnlineTime:        row.TotalOnlineTime,
		TotalMegabytesSent:     row.TotalMegabytesSent,
		TotalMegabytesReceived: row.TotalMegabytesReceived,
		TotalMegabytes:         row.TotalMegabytes,
	}

	if row.SinceDate.Valid {
		t, err := parseTimestamp(row.SinceDate.String)
		if err != nil {
			return nil, err
		}
		result.SinceDate = &t
	}

	return result, nil
}

func (r *usageRepo) Items(ctx context.Context, since *time.Time) ([]model.UsageRecord, error) {
	query := `
		SELECT date, connections, online_time, megabytes_sent, megabytes_received, megabytes_total
		FROM usage_records`
	query, args := withSince(query, since)
	query += ` ORDER BY date ASC`

	records := make([]model.UsageRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, err
	}
	return records, nil
}

func withSince(query string, since *time.Time) (string, []interface{}) {
	if since == nil {
		return query, nil
	}
	return query + ` WHERE date >= ?`, []interface{}{since.UTC()}
}

// parseTimestamp accepts the same layouts the driver uses for DATETIME columns.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
