package banking

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rowclub/membership-engine/club"
)

// Result summarizes one import run.
type Result struct {
	Success      bool
	Message      string
	ImportID     string
	TotalRows    int
	SuccessCount int
	SkippedCount int
	ErrorCount   int
}

// Importer runs the statement import pipeline: hash, dedup, parse, persist.
type Importer struct {
	transactions TransactionStore
	imports      ImportStore
	log          *slog.Logger
}

func NewImporter(transactions TransactionStore, imports ImportStore, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{transactions: transactions, imports: imports, log: log}
}

// ImportFile imports the statement at path, using fileName for display and
// audit records.
func (im *Importer) ImportFile(ctx context.Context, path, fileName string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading statement file: %w", err)
	}
	return im.Import(ctx, bytes.NewReader(content), fileName)
}

// Import imports a statement from r. The stream is read fully up front so
// the content hash covers exactly what gets parsed.
func (im *Importer) Import(ctx context.Context, r io.Reader, fileName string) (*Result, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}

	sum := sha256.Sum256(content)
	fileHash := hex.EncodeToString(sum[:])

	// Whole-file dedup: a re-uploaded statement answers with the stats of
	// the original run.
	if existing, err := im.imports.GetByFileHash(ctx, fileHash); err == nil {
		im.log.Info("statement_already_imported", "file", fileName, "import_id", existing.ID)
		return &Result{
			Success:      true,
			Message:      "file was already imported",
			ImportID:     existing.ID,
			TotalRows:    existing.TotalRows,
			SuccessCount: existing.SuccessCount,
			SkippedCount: existing.SkippedCount,
			ErrorCount:   existing.ErrorCount,
		}, nil
	} else if !errors.Is(err, club.ErrNotFound) {
		return nil, err
	}

	rows, err := ParseStatement(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &Result{Success: false, Message: "file contains no data"}, nil
	}

	imp, err := NewImport(fileName, fileHash, len(rows))
	if err != nil {
		return nil, err
	}
	if err := im.imports.Add(ctx, imp); err != nil {
		return nil, err
	}

	var success, skipped, failed int
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome, errMsg := im.processRow(ctx, imp, row)
		detail := NewImportDetail(imp.ID, row.RowNumber, outcome, row.RawData, errMsg)
		if err := im.imports.AddDetail(ctx, detail); err != nil {
			return nil, err
		}
		switch outcome {
		case RowSuccess:
			success++
		case RowSkipped:
			skipped++
		case RowError:
			failed++
		}
	}

	imp.UpdateStatistics(success, skipped, failed)
	if err := im.imports.Update(ctx, imp); err != nil {
		return nil, err
	}

	im.log.Info("statement_imported",
		"file", fileName,
		"total", len(rows),
		"new", success,
		"skipped", skipped,
		"errors", failed,
	)
	return &Result{
		Success:      true,
		Message:      fmt.Sprintf("import finished: %d new, %d skipped, %d errors", success, skipped, failed),
		ImportID:     imp.ID,
		TotalRows:    len(rows),
		SuccessCount: success,
		SkippedCount: skipped,
		ErrorCount:   failed,
	}, nil
}

// processRow handles one row in isolation: a failure here is recorded as a
// row-level error and never aborts the file.
func (im *Importer) processRow(ctx context.Context, imp *Import, row ParsedRow) (RowOutcome, string) {
	if row.Err != nil {
		im.log.Warn("statement_row_malformed", "file", imp.FileName, "row", row.RowNumber, "err", row.Err)
		return RowError, row.Err.Error()
	}

	exists, err := im.transactions.Exists(ctx, row.Tx.OperationDate, row.Tx.Amount, row.Tx.Currency)
	if err != nil {
		im.log.Error("statement_row_lookup_failed", "file", imp.FileName, "row", row.RowNumber, "err", err)
		return RowError, err.Error()
	}
	if exists {
		return RowSkipped, "transaction already exists (unique by date, amount and currency)"
	}

	if err := im.transactions.Add(ctx, row.Tx); err != nil {
		im.log.Error("statement_row_save_failed", "file", imp.FileName, "row", row.RowNumber, "err", err)
		return RowError, err.Error()
	}
	return RowSuccess, ""
}
