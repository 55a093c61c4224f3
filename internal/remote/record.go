// Package remote defines the remote store contract: a Postgres table of
// entries keyed by identifier, queryable by full scan ordered by reading
// date, with upsert-by-identifier, delete-by-identifier and delete-all.
package remote

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Record is the wire shape of one entry row. Column names follow the
// remote schema's flattened lowercase convention; translation to and
// from the application's Entry lives in the mapper package.
type Record struct {
	ID          string              `json:"id"`
	UtilityType string              `json:"utilitytype"`
	Supplier    string              `json:"supplier"`
	ReadingDate time.Time           `json:"readingdate"`
	Reading     decimal.NullDecimal `json:"reading"`
	Unit        string              `json:"unit"`
	Amount      decimal.Decimal     `json:"amount"`
	Notes       string              `json:"notes"`
	PaymentDate *time.Time          `json:"paymentdate"`
	PaymentRef  string              `json:"paymentref"`
	CreatedAt   time.Time           `json:"createdat"`
	UpdatedAt   time.Time           `json:"updatedat"`
}

// Store describes the remote entry table operations used by the sync engine.
type Store interface {
	// List returns every row ordered by reading date descending.
	List(ctx context.Context) ([]Record, error)

	// Upsert inserts or replaces a row by identifier and returns the
	// stored row. An empty identifier lets the store assign one.
	Upsert(ctx context.Context, rec Record) (Record, error)

	// Delete removes a row by identifier.
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every row.
	DeleteAll(ctx context.Context) error

	// Ping reports reachability of the remote store.
	Ping(ctx context.Context) error
}
