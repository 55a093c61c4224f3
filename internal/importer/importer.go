// Package importer reads entries from CSV and saves them through the sync
// engine. Rows are validated independently; a failing row is reported with
// its line number and per-field errors and never aborts the rest of the
// batch.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/meterbook/meterbook/internal/logging"
	"github.com/meterbook/meterbook/internal/models"
	"github.com/meterbook/meterbook/internal/validation"
)

// Saver is the slice of the sync engine the importer needs.
type Saver interface {
	SaveEntry(ctx context.Context, entry models.Entry) (models.Entry, error)
}

// Result reports the outcome of one CSV row.
type Result struct {
	// Line is the 1-based line in the source file where the row starts,
	// header included. Quoted fields may span lines, so rows are located
	// by position rather than counted.
	Line int

	// Entry is the saved entry when Err is nil.
	Entry models.Entry

	// Err is a validation.Errors for schema failures or the save error.
	Err error
}

// Summary aggregates a whole import run.
type Summary struct {
	Results []Result
	Saved   int
	Failed  int
}

// Importer drives CSV bulk import.
type Importer struct {
	saver Saver
	log   logging.Logger
}

func New(saver Saver, log logging.Logger) *Importer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Importer{saver: saver, log: log}
}

// column names accepted in the header, case-insensitive
var headerFields = map[string]string{
	"utilitytype": "utilitytype",
	"type":        "utilitytype",
	"supplier":    "supplier",
	"readingdate": "readingdate",
	"date":        "readingdate",
	"reading":     "reading",
	"unit":        "unit",
	"amount":      "amount",
	"notes":       "notes",
	"paymentdate": "paymentdate",
	"paymentref":  "paymentref",
}

// Import reads CSV from r and saves every valid row. The first record must
// be a header naming the columns. An error is returned only when the input
// itself is unreadable; row-level failures land in the summary.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Summary, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Summary{}, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[int]string, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if field, ok := headerFields[key]; ok {
			cols[i] = field
		}
	}
	if len(cols) == 0 {
		return Summary{}, fmt.Errorf("csv header has no recognized columns")
	}

	var summary Summary
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// malformed row: report it and keep going
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			summary.Results = append(summary.Results, Result{Line: line, Err: err})
			summary.Failed++
			continue
		}

		line, _ := cr.FieldPos(0)
		res := im.importRow(ctx, cols, row)
		res.Line = line
		if res.Err != nil {
			summary.Failed++
		} else {
			summary.Saved++
		}
		summary.Results = append(summary.Results, res)
	}

	im.log.Info(ctx, "csv import finished", "saved", summary.Saved, "failed", summary.Failed)
	return summary, nil
}

func (im *Importer) importRow(ctx context.Context, cols map[int]string, row []string) Result {
	var in validation.Input
	for i, field := range cols {
		if i >= len(row) {
			continue
		}
		v := row[i]
		switch field {
		case "utilitytype":
			in.Type = v
		case "supplier":
			in.Supplier = v
		case "readingdate":
			in.ReadingDate = v
		case "reading":
			in.Reading = v
		case "unit":
			in.Unit = v
		case "amount":
			in.Amount = v
		case "notes":
			in.Notes = v
		case "paymentdate":
			in.PaymentDate = v
		case "paymentref":
			in.PaymentRef = v
		}
	}

	entry, err := validation.Validate(in)
	if err != nil {
		return Result{Err: err}
	}

	saved, err := im.saver.SaveEntry(ctx, entry)
	if err != nil {
		return Result{Entry: saved, Err: err}
	}
	return Result{Entry: saved}
}
