// Package mapper translates between the application entry and the remote
// wire record. Both directions are total, stateless and free of I/O so the
// translation can be tested in isolation.
package mapper

import (
	"github.com/shopspring/decimal"

	"github.com/meterbook/meterbook/internal/models"
	"github.com/meterbook/meterbook/internal/remote"
)

// ToRemote maps an application entry to the remote wire shape. The synced
// flag is local bookkeeping and has no remote column.
func ToRemote(e models.Entry) remote.Record {
	rec := remote.Record{
		ID:          e.ID,
		UtilityType: string(e.Type),
		Supplier:    e.Supplier,
		ReadingDate: e.ReadingDate,
		Unit:       e.Unit,
		Amount:     e.Amount,
		Notes:      e.Notes,
		PaymentRef: e.PaymentRef,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	if e.Reading != nil {
		rec.Reading = decimal.NewNullDecimal(*e.Reading)
	}
	if e.PaymentDate != nil {
		d := *e.PaymentDate
		rec.PaymentDate = &d
	}
	return rec
}

// FromRemote maps a wire record back to an application entry. Data coming
// from the remote store is definitionally in sync, so Synced is always true.
func FromRemote(rec remote.Record) models.Entry {
	e := models.Entry{
		ID:          rec.ID,
		Type:        models.UtilityType(rec.UtilityType),
		Supplier:    rec.Supplier,
		ReadingDate: rec.ReadingDate,
		Unit:       rec.Unit,
		Amount:     rec.Amount,
		Notes:      rec.Notes,
		PaymentRef: rec.PaymentRef,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
		Synced:     true,
	}
	if rec.Reading.Valid {
		r := rec.Reading.Decimal
		e.Reading = &r
	}
	if rec.PaymentDate != nil {
		d := *rec.PaymentDate
		e.PaymentDate = &d
	}
	return e
}
