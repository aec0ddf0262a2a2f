package domain

import "strings"

type CoinID int

// Coin is a fungible asset of the catalog.
type Coin struct {
	ID       CoinID
	Symbol   string
	Name     string
	ImageURL string
}

const quoteSuffix = "usdt"

// TradingSymbol is the symbol as shown to clients, e.g. "btc" -> "BTCUSDT".
func (c Coin) TradingSymbol() string {
	return strings.ToUpper(c.Symbol) + strings.ToUpper(quoteSuffix)
}

// NormalizeSymbol strips the quote suffix and lowercases a symbol or name lookup key.
func NormalizeSymbol(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), quoteSuffix, "")
}
