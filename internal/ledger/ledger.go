// Package ledger holds the in-memory transaction rows for a session.
// Rows are loaded from CSV, mutated in place while the user works, and
// written back preserving the original column layout.
package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/siftcat/sift/internal/common"
)

// Row is one transaction. Amount travels with the row but is never
// interpreted here. Rows are created at load and never destroyed within
// a session.
type Row struct {
	Index           int
	StatementDate   string
	TransactionDate string
	Description     string
	Amount          string
	Category        string
	Group           string
	Confirmed       bool
}

// columns records where each recognized field lives in the source CSV.
// A value of -1 means the column was absent.
type columns struct {
	statement   int
	transaction int
	description int
	amount      int
	category    int
	group       int
}

// Ledger is the loaded CSV: parsed rows plus enough of the original
// structure to write the file back with unknown columns intact.
type Ledger struct {
	Rows []Row

	header  []string
	records [][]string
	cols    columns
}

// headerCandidates maps each recognized field to the header spellings it
// may appear under. Matching is case-insensitive with spaces and dashes
// treated as underscores.
var headerCandidates = map[string][]string{
	"statement":   {"statement_date"},
	"transaction": {"transaction_date", "date"},
	"description": {"description", "desc", "merchant", "payee"},
	"amount":      {"amount", "value"},
	"category":    {"category"},
	"group":       {"group"},
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	h = strings.ReplaceAll(h, " ", "_")
	return strings.ReplaceAll(h, "-", "_")
}

func findColumn(header []string, field string) int {
	for _, cand := range headerCandidates[field] {
		for i, h := range header {
			if normalizeHeader(h) == cand {
				return i
			}
		}
	}
	return -1
}

// Load reads a transaction CSV from disk. Unlike taxonomy and rule
// snapshots, a missing ledger is fatal: there is nothing to categorize.
func Load(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrNoLedger, path)
		}
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads CSV data. The first record is the header; a description
// column is required, everything else is optional. Short records are
// padded so ragged input does not abort the load.
func Parse(r io.Reader) (*Ledger, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse ledger CSV: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("ledger CSV is empty")
	}

	header := all[0]
	cols := columns{
		statement:   findColumn(header, "statement"),
		transaction: findColumn(header, "transaction"),
		description: findColumn(header, "description"),
		amount:      findColumn(header, "amount"),
		category:    findColumn(header, "category"),
		group:       findColumn(header, "group"),
	}
	if cols.description == -1 {
		return nil, fmt.Errorf("ledger CSV has no description column")
	}

	l := &Ledger{header: header, cols: cols}
	for i, rec := range all[1:] {
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		l.records = append(l.records, rec)
		l.Rows = append(l.Rows, Row{
			Index:           i,
			StatementDate:   cell(rec, cols.statement),
			TransactionDate: cell(rec, cols.transaction),
			Description:     cell(rec, cols.description),
			Amount:          cell(rec, cols.amount),
			Category:        cell(rec, cols.category),
			Group:           cell(rec, cols.group),
		})
	}
	return l, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// Encode renders the ledger back to CSV. Original columns keep their
// order and content; Category and Group are filled in place when the
// source had those columns, or appended at the end when it did not.
func (l *Ledger) Encode() ([]byte, error) {
	header := append([]string(nil), l.header...)
	catCol, grpCol := l.cols.category, l.cols.group
	if catCol == -1 {
		catCol = len(header)
		header = append(header, "Category")
	}
	if grpCol == -1 {
		grpCol = len(header)
		header = append(header, "Group")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write ledger header: %w", err)
	}
	for i, rec := range l.records {
		out := append([]string(nil), rec...)
		for len(out) < len(header) {
			out = append(out, "")
		}
		out[catCol] = l.Rows[i].Category
		out[grpCol] = l.Rows[i].Group
		if err := w.Write(out); err != nil {
			return nil, fmt.Errorf("failed to write ledger row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush ledger CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// Len reports the number of transaction rows.
func (l *Ledger) Len() int { return len(l.Rows) }
