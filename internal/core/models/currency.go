package models

// Currency is an ISO 4217 code accepted by the payment form.
type Currency string

const (
	CurrencyCOP Currency = "COP"
	CurrencyUSD Currency = "USD"
)

var SupportedCurrencies = []Currency{CurrencyCOP, CurrencyUSD}

func (c Currency) Valid() bool {
	switch c {
	case CurrencyCOP, CurrencyUSD:
		return true
	default:
		return false
	}
}
