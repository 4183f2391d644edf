package usecase

import (
	"strings"

	"github.com/Nzyazin/paycapture/internal/core/models"
	"github.com/shopspring/decimal"
)

// TransactionFilter narrows the admin listing. Empty fields match everything.
type TransactionFilter struct {
	Search   string
	Currency string
}

type CurrencyStats struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type Stats struct {
	Total      int                               `json:"total"`
	ByCurrency map[models.Currency]CurrencyStats `json:"byCurrency"`
}

// Filter keeps transactions whose name, description or id contain Search
// (case-insensitive) and whose currency equals Currency. "all" disables
// the currency match.
func Filter(transactions []models.Transaction, f TransactionFilter) []models.Transaction {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	currency := strings.TrimSpace(f.Currency)
	if strings.EqualFold(currency, "all") {
		currency = ""
	}

	filtered := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if currency != "" && string(tx.Currency) != currency {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(tx.Name), search) &&
			!strings.Contains(strings.ToLower(tx.Description), search) &&
			!strings.Contains(strings.ToLower(tx.ID), search) {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered
}

// Summarize counts transactions and adds up amounts per currency. Amounts
// in different currencies are never added together.
func Summarize(transactions []models.Transaction) Stats {
	stats := Stats{
		Total:      len(transactions),
		ByCurrency: make(map[models.Currency]CurrencyStats, len(models.SupportedCurrencies)),
	}
	for _, c := range models.SupportedCurrencies {
		stats.ByCurrency[c] = CurrencyStats{Amount: decimal.Zero}
	}
	for _, tx := range transactions {
		cs := stats.ByCurrency[tx.Currency]
		cs.Count++
		cs.Amount = cs.Amount.Add(tx.Amount)
		stats.ByCurrency[tx.Currency] = cs
	}
	return stats
}
