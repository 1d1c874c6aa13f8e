// Package qif serializes normalized transactions into the QIF interchange
// format understood by most personal-finance software.
package qif

import (
	"fmt"
	"io"

	"github.com/yurifrl/greenqif/pkg/models"
)

// The account only holds euros; anything else in the history means the
// export is not safe to book and the whole run stops.
const ledgerCurrency = "EUR"

// dateFormat is dd/mm/yyyy, the register format the downstream importers
// are configured for.
const dateFormat = "02/01/2006"

// Write serializes the transactions to w as a QIF bank register.
//
// Booking rules: AUTHORISED and COMPLETE entries are written, CANCELLED and
// EXPIRED are skipped, any other status aborts with an error rather than
// guessing. Debits are negative, credits positive.
func Write(w io.Writer, txs []models.Transaction) error {
	if _, err := io.WriteString(w, "!Type:Bank\n"); err != nil {
		return fmt.Errorf("writing qif header: %w", err)
	}

	for _, tx := range txs {
		if tx.Amount.Currency != ledgerCurrency {
			return fmt.Errorf("transaction %s is not in %s but in %s", tx.ID, ledgerCurrency, tx.Amount.Currency)
		}

		switch tx.Status {
		case models.StatusAuthorised, models.StatusComplete:
			// ledger-worthy
		case models.StatusCancelled, models.StatusExpired:
			continue
		default:
			return fmt.Errorf("unknown status %q for transaction %s", tx.Status, tx.ID)
		}

		amount, err := tx.SignedAmount()
		if err != nil {
			return err
		}

		if err := writeEntry(w, tx, amount.StringFixed(2)); err != nil {
			return fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}
	return nil
}

func writeEntry(w io.Writer, tx models.Transaction, amount string) error {
	fields := []string{
		"D" + tx.CreatedAt.Format(dateFormat),
		"T" + amount,
		"P" + tx.Counterparty,
	}
	if memo := tx.Memo(); memo != "" {
		fields = append(fields, "M"+memo)
	}
	fields = append(fields, "^")

	for _, field := range fields {
		if _, err := io.WriteString(w, field+"\n"); err != nil {
			return err
		}
	}
	return nil
}
