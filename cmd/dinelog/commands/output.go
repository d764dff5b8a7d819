package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kirillkom/dinelog/internal/core/domain"
	"github.com/kirillkom/dinelog/internal/infrastructure/export/xlsx"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emitResult prints res as JSON, or writes a workbook when xlsxPath is set.
func emitResult(w io.Writer, res *domain.QueryResult, xlsxPath string) error {
	public := domain.ToPublicResult(res)
	if xlsxPath == "" {
		return printJSON(w, public)
	}
	f, err := os.Create(xlsxPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", xlsxPath, err)
	}
	if err := xlsx.Write(f, public); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %d places and %d reviews to %s\n", len(public.Places), len(public.Reviews), xlsxPath)
	return nil
}
