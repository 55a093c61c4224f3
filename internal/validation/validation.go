// Package validation implements the entry schema shared by the create/edit
// path and the bulk CSV importer. Input carries raw string fields exactly as
// a form or CSV row provides them; Validate collects every failing field
// instead of stopping at the first, so importers can report per-row,
// per-field errors.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meterbook/meterbook/internal/common"
	"github.com/meterbook/meterbook/internal/models"
)

// FieldError addresses one failing field of one entry.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors is the full set of failures for a single entry.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match common.ErrValidationFailed.
func (e Errors) Unwrap() error {
	return common.ErrValidationFailed
}

// Input is an unvalidated entry as entered by the user or read from a
// CSV row. All fields are raw strings.
type Input struct {
	ID          string
	Type        string
	Supplier    string
	ReadingDate string
	Reading     string
	Unit        string
	Amount      string
	Notes       string
	PaymentDate string
	PaymentRef  string
}

// Validate checks in against the entry schema and, when everything passes,
// returns the typed entry. On failure the returned Errors lists every
// failing field. The returned entry carries no bookkeeping fields; the
// sync engine stamps timestamps and the synced flag on save.
func Validate(in Input) (models.Entry, error) {
	var errs Errors

	e := models.Entry{
		ID:         strings.TrimSpace(in.ID),
		Supplier:   strings.TrimSpace(in.Supplier),
		Unit:       strings.TrimSpace(in.Unit),
		Notes:      strings.TrimSpace(in.Notes),
		PaymentRef: strings.TrimSpace(in.PaymentRef),
	}

	typ := models.UtilityType(strings.TrimSpace(in.Type))
	if typ == "" {
		errs = append(errs, FieldError{Field: "utilityType", Message: "is required"})
	} else if !typ.Valid() {
		errs = append(errs, FieldError{Field: "utilityType", Message: fmt.Sprintf("unknown utility type %q", typ)})
	} else {
		e.Type = typ
	}

	if e.Supplier == "" {
		errs = append(errs, FieldError{Field: "supplier", Message: "is required"})
	}

	if s := strings.TrimSpace(in.ReadingDate); s == "" {
		errs = append(errs, FieldError{Field: "readingDate", Message: "is required"})
	} else if d, err := time.Parse(models.DateLayout, s); err != nil {
		errs = append(errs, FieldError{Field: "readingDate", Message: fmt.Sprintf("must be a date in %s format", models.DateLayout)})
	} else {
		e.ReadingDate = d
	}

	if s := strings.TrimSpace(in.Amount); s == "" {
		errs = append(errs, FieldError{Field: "amount", Message: "is required"})
	} else if a, err := decimal.NewFromString(s); err != nil {
		errs = append(errs, FieldError{Field: "amount", Message: "must be a number"})
	} else if a.IsNegative() {
		errs = append(errs, FieldError{Field: "amount", Message: "must not be negative"})
	} else {
		e.Amount = a
	}

	if s := strings.TrimSpace(in.Reading); s != "" {
		if r, err := decimal.NewFromString(s); err != nil {
			errs = append(errs, FieldError{Field: "reading", Message: "must be a number"})
		} else {
			e.Reading = &r
		}
	}

	if s := strings.TrimSpace(in.PaymentDate); s != "" {
		if d, err := time.Parse(models.DateLayout, s); err != nil {
			errs = append(errs, FieldError{Field: "paymentDate", Message: fmt.Sprintf("must be a date in %s format", models.DateLayout)})
		} else {
			e.PaymentDate = &d
		}
	}

	if len(errs) > 0 {
		return models.Entry{}, errs
	}
	return e, nil
}
