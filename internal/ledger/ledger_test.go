package ledger

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftcat/sift/internal/common"
)

const basicCSV = `Statement_Date,Transaction_Date,Description,Amount
2026-01-31,2026-01-03,SAFEWAY #1234,42.17
2026-01-31,2026-01-05,NETFLIX.COM,15.99
`

func TestParse_Basic(t *testing.T) {
	l, err := Parse(strings.NewReader(basicCSV))
	require.NoError(t, err)

	require.Equal(t, 2, l.Len())
	assert.Equal(t, 0, l.Rows[0].Index)
	assert.Equal(t, "2026-01-31", l.Rows[0].StatementDate)
	assert.Equal(t, "2026-01-03", l.Rows[0].TransactionDate)
	assert.Equal(t, "SAFEWAY #1234", l.Rows[0].Description)
	assert.Equal(t, "42.17", l.Rows[0].Amount)
	assert.Empty(t, l.Rows[0].Category)
	assert.False(t, l.Rows[0].Confirmed)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, common.ErrNoLedger)
}

func TestParse_HeaderMatching(t *testing.T) {
	tests := []struct {
		name   string
		header string
		desc   string
	}{
		{name: "lowercase underscores", header: "statement_date,transaction_date,description,amount", desc: "description"},
		{name: "spaces and mixed case", header: "Statement Date,Transaction Date,Description,Amount", desc: "Description"},
		{name: "dashes", header: "statement-date,transaction-date,description,amount", desc: "description"},
		{name: "merchant alias", header: "date,merchant,amount", desc: "merchant"},
		{name: "payee alias", header: "date,payee,value", desc: "payee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csv := tt.header + "\n" + strings.Repeat("x,", strings.Count(tt.header, ",")) + "x\n"
			l, err := Parse(strings.NewReader(csv))
			require.NoError(t, err)
			require.Equal(t, 1, l.Len())
			assert.Equal(t, "x", l.Rows[0].Description)
		})
	}
}

func TestParse_NoDescriptionColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("date,amount\n2026-01-01,5.00\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParse_RaggedRows(t *testing.T) {
	csv := "date,description,amount,category\n2026-01-01,COFFEE\n"
	l, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())
	assert.Equal(t, "COFFEE", l.Rows[0].Description)
	assert.Empty(t, l.Rows[0].Amount)
}

func TestParse_ExistingAssignments(t *testing.T) {
	csv := "description,amount,category,group\nSAFEWAY,10.00,Groceries,Food\n"
	l, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, "Groceries", l.Rows[0].Category)
	assert.Equal(t, "Food", l.Rows[0].Group)
}

func TestEncode_AppendsMissingColumns(t *testing.T) {
	l, err := Parse(strings.NewReader(basicCSV))
	require.NoError(t, err)

	l.Rows[0].Category = "Groceries"
	l.Rows[0].Group = "Food"
	l.Rows[1].Category = "Streaming"
	l.Rows[1].Group = "Entertainment"

	out, err := l.Encode()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Statement_Date,Transaction_Date,Description,Amount,Category,Group", lines[0])
	assert.Equal(t, "2026-01-31,2026-01-03,SAFEWAY #1234,42.17,Groceries,Food", lines[1])
	assert.Equal(t, "2026-01-31,2026-01-05,NETFLIX.COM,15.99,Streaming,Entertainment", lines[2])
}

func TestEncode_FillsExistingColumns(t *testing.T) {
	csv := "category,description,notes,group\n,SAFEWAY,keep me,\n"
	l, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)

	l.Rows[0].Category = "Groceries"
	l.Rows[0].Group = "Food"

	out, err := l.Encode()
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "category,description,notes,group", lines[0], "original column order is preserved")
	assert.Equal(t, "Groceries,SAFEWAY,keep me,Food", lines[1], "unknown columns survive the round trip")
}

func TestEncode_RoundTrip(t *testing.T) {
	l, err := Parse(strings.NewReader(basicCSV))
	require.NoError(t, err)
	l.Rows[0].Category = "Groceries"
	l.Rows[0].Group = "Food"

	out, err := l.Encode()
	require.NoError(t, err)

	again, err := Parse(strings.NewReader(string(out)))
	require.NoError(t, err)
	require.Equal(t, l.Len(), again.Len())
	assert.Equal(t, "Groceries", again.Rows[0].Category)
	assert.Equal(t, "Food", again.Rows[0].Group)
	assert.Equal(t, l.Rows[0].Description, again.Rows[0].Description)
}
