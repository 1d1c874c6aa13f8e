package parser

import (
	"encoding/json"
	"fmt"

	"github.com/yurifrl/greenqif/pkg/models"
)

// ParseJSON parses a transaction dump as produced by `greenqif fetch --json`
// (a plain array) or a raw API page object. Every entry must normalize: a
// dump with holes is a bug upstream, not something to paper over.
func (p *Parser) ParseJSON(data []byte) ([]models.Transaction, error) {
	var raw []models.APITransaction
	if err := json.Unmarshal(data, &raw); err != nil {
		// Maybe it is a single page object instead of an array.
		var page models.Page
		if pageErr := json.Unmarshal(data, &page); pageErr != nil || page.Transactions == nil {
			return nil, fmt.Errorf("failed to parse json dump: %w", err)
		}
		raw = page.Transactions
	}

	txs := make([]models.Transaction, 0, len(raw))
	for i, entry := range raw {
		tx, err := entry.Normalize()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		txs = append(txs, *tx)
	}

	p.logger.Info("json dump parsing complete", "total_transactions", len(txs))
	return txs, nil
}
