package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/greenqif/pkg/models"
)

// Column layout of the Green-Got account export.
const (
	csvColID           = 0
	csvColStatus       = 1
	csvColCreatedAt    = 2
	csvColAmount       = 3
	csvColDirection    = 4
	csvColCurrency     = 5
	csvColCounterparty = 7
	csvColReference    = 11
	csvNumFields       = 12
)

// ParseCSV parses a Green-Got account CSV export. Unlike the API, the export
// carries amounts in major units, so they are shifted back to cents here.
// Damaged lines are skipped and logged; lines that parse must normalize.
func (p *Parser) ParseCSV(data []byte) ([]models.Transaction, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // validate column count per line below

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv is empty")
	}

	start := 0
	if strings.EqualFold(strings.TrimSpace(records[0][csvColID]), "Transaction ID") {
		start = 1 // skip header
	}

	txs := make([]models.Transaction, 0, len(records)-start)
	for i := start; i < len(records); i++ {
		rec := records[i]
		if len(rec) < csvNumFields {
			p.logger.Debug("csv line has too few fields, skipping", "line", i, "fields", len(rec))
			continue
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(rec[csvColAmount]))
		if err != nil {
			p.logger.Debug("invalid amount, skipping", "line", i, "err", err)
			continue
		}

		raw := models.APITransaction{
			ID:     strings.TrimSpace(rec[csvColID]),
			Status: strings.TrimSpace(rec[csvColStatus]),
			Amount: &models.Amount{
				Currency: strings.TrimSpace(rec[csvColCurrency]),
				Value:    amount.Shift(2).IntPart(),
			},
			Direction:    strings.TrimSpace(rec[csvColDirection]),
			CreatedAt:    strings.TrimSpace(rec[csvColCreatedAt]),
			Counterparty: strings.TrimSpace(rec[csvColCounterparty]),
			Reference:    strings.TrimSpace(rec[csvColReference]),
		}

		tx, err := raw.Normalize()
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", i+1, err)
		}
		txs = append(txs, *tx)
	}

	p.logger.Info("csv export parsing complete", "total_transactions", len(txs), "total_records", len(records))
	return txs, nil
}
