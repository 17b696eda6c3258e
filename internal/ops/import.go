package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/config"
	"github.com/hpungsan/capitol/internal/db"
	"github.com/hpungsan/capitol/internal/errors"
)

// ImportMode controls what happens when an imported bill is already stored.
type ImportMode string

const (
	ImportModeReplace ImportMode = "replace" // overwrite the stored bill
	ImportModeSkip    ImportMode = "skip"    // keep the stored bill
)

// maxImportLine bounds one JSONL line; bills with long action histories run large.
const maxImportLine = 16 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: replace
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one line that could not be imported.
type ImportError struct {
	Line    int    `json:"line"`
	Ref     string `json:"ref,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Import loads bills from a JSONL file written by Export. Bad lines are
// reported and skipped; the rest of the file is still imported.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeReplace
	}
	if input.Mode != ImportModeReplace && input.Mode != ImportModeSkip {
		return nil, errors.NewInvalidRequest("mode must be one of: replace, skip")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	out := &ImportOutput{Errors: []ImportError{}}
	lineErr := func(line int, ref, code, msg string) {
		out.Errors = append(out.Errors, ImportError{Line: line, Ref: ref, Code: code, Message: msg})
		out.Skipped++
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)
	lineNum := 0
	sawHeader := false

	for scanner.Scan() {
		lineNum++
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("import")
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if !sawHeader {
			var header ExportHeader
			if err := json.Unmarshal(line, &header); err != nil || !header.CapitolExport {
				return nil, errors.NewInvalidRequest("not a capitol export: missing header line")
			}
			if header.SchemaVersion != ExportSchemaVersion {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("unsupported export schema version %q", header.SchemaVersion))
			}
			sawHeader = true
			continue
		}

		var b bill.Bill
		if err := json.Unmarshal(line, &b); err != nil {
			lineErr(lineNum, "", "PARSE_ERROR", fmt.Sprintf("invalid JSON: %v", err))
			continue
		}
		ref, err := bill.NewRef(b.Congress, b.Type, b.Number)
		if err != nil {
			lineErr(lineNum, "", "INVALID_RECORD", errMessage(err))
			continue
		}

		if input.Mode == ImportModeSkip {
			_, err := db.GetBill(ctx, database, ref)
			if err == nil {
				out.Skipped++
				continue
			}
			if !errors.Is(err, errors.ErrNotFound) {
				return nil, err
			}
		}

		if err := db.UpsertBill(ctx, database, &b, time.Now().Unix()); err != nil {
			return nil, err
		}
		out.Imported++
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	if !sawHeader {
		return nil, errors.NewInvalidRequest("not a capitol export: file is empty")
	}
	return out, nil
}
