package parser

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/greenqif/pkg/models"
)

func newTestParser() *Parser {
	return New(log.New(io.Discard))
}

func TestProcessBytesJSON(t *testing.T) {
	content := []byte(`[
		{
			"id": "tx-1",
			"amount": {"currency": "EUR", "value": 1250},
			"status": "COMPLETE",
			"direction": "DEBIT",
			"createdAt": "2025-03-17T10:00:00.000Z",
			"counterparty": "Boulangerie Martin",
			"reference": "CB 1703"
		},
		{
			"id": "tx-2",
			"amount": {"currency": "EUR", "value": 90000},
			"status": "COMPLETE",
			"direction": "CREDIT",
			"createdAt": "2025-03-18T08:30:00.000Z",
			"counterparty": "ACME Payroll",
			"note": "salary"
		}
	]`)

	txs, err := newTestParser().ProcessBytes(content, "history.json")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "tx-1", txs[0].ID)
	assert.Equal(t, models.DirectionDebit, txs[0].Direction)
	assert.Equal(t, int64(1250), txs[0].Amount.Value)
	assert.Equal(t, "salary", txs[1].Note)
}

func TestParseJSONPageObject(t *testing.T) {
	content := []byte(`{"transactions": [{
		"id": "tx-1",
		"amount": {"currency": "EUR", "value": 100},
		"status": "AUTHORISED",
		"direction": "DEBIT",
		"createdAt": "2025-03-17T10:00:00Z"
	}], "nextCursor": "c1"}`)

	txs, err := newTestParser().ParseJSON(content)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.StatusAuthorised, txs[0].Status)
}

func TestParseJSONInvalidEntry(t *testing.T) {
	content := []byte(`[{"id": "tx-1", "status": "COMPLETE"}]`)

	_, err := newTestParser().ParseJSON(content)
	assert.ErrorContains(t, err, "has no amount")
}

func TestProcessBytesCSV(t *testing.T) {
	content := []byte(`"Transaction ID","Status","Created at","Amount","Direction","Currency","IBAN","Counterparty","Counterparty IBAN","Payment method","Category","Reference"
"tx-1","COMPLETE","2025-03-17T10:00:00Z","12.50","DEBIT","EUR","FR76...","Boulangerie Martin","","CARD","","CB 1703"
"tx-2","AUTHORISED","2025-03-18T08:30:00Z","900.00","CREDIT","EUR","FR76...","ACME Payroll","FR14...","TRANSFER","","VIR SALARY"`)

	txs, err := newTestParser().ProcessBytes(content, "export.csv")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(1250), txs[0].Amount.Value, "csv major units convert to cents")
	assert.Equal(t, int64(90000), txs[1].Amount.Value)
	assert.Equal(t, "Boulangerie Martin", txs[0].Counterparty)
	assert.Equal(t, "VIR SALARY", txs[1].Reference)
}

func TestParseCSVSkipsDamagedLines(t *testing.T) {
	content := []byte(`"tx-1","COMPLETE","2025-03-17T10:00:00Z","not-a-number","DEBIT","EUR","","Shop","","CARD","",""
"tx-2","COMPLETE","2025-03-17T11:00:00Z","5.00","DEBIT","EUR","","Shop","","CARD","",""`)

	txs, err := newTestParser().ParseCSV(content)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "tx-2", txs[0].ID)
}

func TestProcessBytesUnknownType(t *testing.T) {
	_, err := newTestParser().ProcessBytes([]byte("hello"), "notes.txt")
	assert.ErrorContains(t, err, "unknown file type")
}

func TestDetectTypeSniffsJSON(t *testing.T) {
	assert.Equal(t, GreenGotJSON, detectType([]byte("  [{}]"), "dump"))
	assert.Equal(t, GreenGotCSV, detectType(nil, "Export.CSV"))
	assert.Equal(t, FileType(""), detectType([]byte("plain text"), "dump"))
}
