package remote

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/meterbook/meterbook/internal/common"
)

// DB is the subset of pgxpool.Pool used by the store. pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var columns = []string{
	"id", "utilitytype", "supplier", "readingdate", "reading", "unit",
	"amount", "notes", "paymentdate", "paymentref", "createdat", "updatedat",
}

// PostgresStore implements Store over a pgx connection pool.
type PostgresStore struct {
	db DB
}

// NewPostgresStore constructs a store bound to the given pool.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID, &rec.UtilityType, &rec.Supplier, &rec.ReadingDate,
		&rec.Reading, &rec.Unit, &rec.Amount, &rec.Notes,
		&rec.PaymentDate, &rec.PaymentRef, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	query, args, err := psql.Select(columns...).
		From("entries").
		OrderBy("readingdate DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list entries: %w", common.ErrRemoteUnavailable, err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan entry: %w", common.ErrRemoteUnavailable, err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list entries: %w", common.ErrRemoteUnavailable, err)
	}
	return result, nil
}

// Upsert inserts the row, replacing an existing one with the same
// identifier. When rec.ID is empty the column default assigns a fresh
// UUID. The stored row is returned in both cases.
func (s *PostgresStore) Upsert(ctx context.Context, rec Record) (Record, error) {
	b := psql.Insert("entries")
	if rec.ID == "" {
		b = b.Columns(columns[1:]...).
			Values(rec.UtilityType, rec.Supplier, rec.ReadingDate, rec.Reading,
				rec.Unit, rec.Amount, rec.Notes, rec.PaymentDate, rec.PaymentRef,
				rec.CreatedAt, rec.UpdatedAt)
	} else {
		b = b.Columns(columns...).
			Values(rec.ID, rec.UtilityType, rec.Supplier, rec.ReadingDate, rec.Reading,
				rec.Unit, rec.Amount, rec.Notes, rec.PaymentDate, rec.PaymentRef,
				rec.CreatedAt, rec.UpdatedAt).
			Suffix(`ON CONFLICT (id) DO UPDATE SET
				utilitytype = EXCLUDED.utilitytype,
				supplier = EXCLUDED.supplier,
				readingdate = EXCLUDED.readingdate,
				reading = EXCLUDED.reading,
				unit = EXCLUDED.unit,
				amount = EXCLUDED.amount,
				notes = EXCLUDED.notes,
				paymentdate = EXCLUDED.paymentdate,
				paymentref = EXCLUDED.paymentref,
				updatedat = EXCLUDED.updatedat`)
	}
	query, args, err := b.Suffix("RETURNING " + columnList()).ToSql()
	if err != nil {
		return Record{}, fmt.Errorf("build upsert query: %w", err)
	}

	stored, err := scanRecord(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return Record{}, fmt.Errorf("%w: upsert entry: %w", common.ErrRemoteUnavailable, err)
	}
	return stored, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("entries").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: delete entry: %w", common.ErrRemoteUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	query, args, err := psql.Delete("entries").ToSql()
	if err != nil {
		return fmt.Errorf("build delete-all query: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: delete all entries: %w", common.ErrRemoteUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", common.ErrRemoteUnavailable, err)
	}
	return nil
}

func columnList() string {
	s := columns[0]
	for _, c := range columns[1:] {
		s += ", " + c
	}
	return s
}
