package domain

import "github.com/shopspring/decimal"

// Holding is a ledger entry: the quantity of one coin owned by one user.
// Quantity is never negative.
type Holding struct {
	Username string
	CoinID   CoinID
	Quantity decimal.Decimal
}

// WalletLine is a holding joined with its coin metadata.
type WalletLine struct {
	Email    string
	Coin     Coin
	Quantity decimal.Decimal
}
