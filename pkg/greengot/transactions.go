package greengot

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/yurifrl/greenqif/pkg/models"
)

// Transactions pages through the whole account history following the
// server-supplied cursor, preserving the server's ordering across pages.
// Pagination stops on an empty page or a missing cursor; a page that carries
// items but no cursor is the final page and its items are kept. The loop is
// explicit on purpose: histories are unbounded and the cursor chain is the
// only terminator.
func (c *Client) Transactions(ctx context.Context) ([]models.Transaction, error) {
	limit := strconv.Itoa(c.pageSize)
	query := url.Values{"limit": {limit}}

	var all []models.Transaction
	for pageNum := 1; ; pageNum++ {
		var page models.Page
		if err := c.getJSON(ctx, "/v2/transactions", query, &page); err != nil {
			return nil, err
		}
		c.logger.Debug("fetched transaction page", "page", pageNum, "items", len(page.Transactions), "cursor", page.NextCursor)

		if len(page.Transactions) == 0 {
			break
		}
		for i, raw := range page.Transactions {
			tx, err := raw.Normalize()
			if err != nil {
				return nil, fmt.Errorf("page %d item %d: %w", pageNum, i, err)
			}
			all = append(all, *tx)
		}
		if page.NextCursor == "" {
			break
		}

		query = url.Values{
			"limit":     {limit},
			"cursor":    {page.NextCursor},
			"startDate": {page.NextStartDate},
		}
	}
	return all, nil
}
