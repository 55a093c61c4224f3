package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/meterbook/meterbook/internal/validation"
)

func (a *App) list(ctx context.Context) {
	entries, err := a.engine.GetEntries(ctx)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if len(entries) == 0 {
		fmt.Println("no entries")
		return
	}
	for _, e := range entries {
		fmt.Println(formatEntry(e))
	}
}

func (a *App) add(ctx context.Context) {
	in := validation.Input{}

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Utility type (electricity, water, gas, ...)", &in.Type},
		{"Supplier", &in.Supplier},
		{"Reading date (YYYY-MM-DD)", &in.ReadingDate},
		{"Meter reading (optional)", &in.Reading},
		{"Unit (optional)", &in.Unit},
		{"Amount", &in.Amount},
		{"Notes (optional)", &in.Notes},
		{"Payment date (optional, YYYY-MM-DD)", &in.PaymentDate},
		{"Payment reference (optional)", &in.PaymentRef},
	}
	for _, f := range fields {
		v, err := GetSimpleText(a.reader, f.prompt, os.Stdout)
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		*f.dst = v
	}

	entry, err := validation.Validate(in)
	if err != nil {
		var errs validation.Errors
		if errors.As(err, &errs) {
			for _, fe := range errs {
				fmt.Printf("  %s: %s\n", fe.Field, fe.Message)
			}
			return
		}
		fmt.Println("error:", err)
		return
	}

	saved, err := a.engine.SaveEntry(ctx, entry)
	if err != nil {
		fmt.Println("warning:", err)
	}
	if saved.Synced {
		fmt.Printf("saved %s\n", saved.ID)
	} else {
		fmt.Printf("saved %s (will sync when online)\n", saved.ID)
	}
}

func (a *App) delete(ctx context.Context, id string) {
	if err := a.engine.DeleteEntry(ctx, id); err != nil {
		fmt.Println("delete failed:", err)
		return
	}
	fmt.Println("deleted", id)
}

func (a *App) deleteAll(ctx context.Context) {
	confirm, err := GetSimpleText(a.reader, "Delete ALL entries? (yes/no)", os.Stdout)
	if err != nil || confirm != "yes" {
		fmt.Println("cancelled")
		return
	}
	if err := a.engine.DeleteAllEntries(ctx); err != nil {
		fmt.Println("delete failed:", err)
		return
	}
	fmt.Println("all entries deleted")
}

func (a *App) pending(ctx context.Context) {
	entries := a.engine.GetUnsyncedEntries(ctx)
	if len(entries) == 0 {
		fmt.Println("nothing pending")
		return
	}
	for _, e := range entries {
		fmt.Println(formatEntry(e))
	}
}

func (a *App) sync(ctx context.Context) {
	n, err := a.engine.SyncUnsynced(ctx)
	if err != nil {
		fmt.Println("sync failed:", err)
		return
	}
	fmt.Printf("synced %d entr%s\n", n, plural(n, "y", "ies"))
}

func (a *App) importCSV(ctx context.Context, path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer f.Close()

	sum, err := a.importer.Import(ctx, f)
	if err != nil {
		fmt.Println("import failed:", err)
		return
	}

	for _, res := range sum.Results {
		if res.Err != nil {
			fmt.Printf("  line %d: %v\n", res.Line, res.Err)
		}
	}
	fmt.Printf("imported %d, failed %d\n", sum.Saved, sum.Failed)
}
