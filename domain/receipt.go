package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Receipt replaces a payment command in the message body once the transfer succeeded.
type Receipt struct {
	CoinImage  string
	CoinName   string
	CoinSymbol string
	Amount     decimal.Decimal
}

func NewReceipt(coin Coin, amount decimal.Decimal) Receipt {
	return Receipt{
		CoinImage:  coin.ImageURL,
		CoinName:   coin.Name,
		CoinSymbol: coin.Symbol,
		Amount:     amount,
	}
}

func (r Receipt) String() string {
	return fmt.Sprintf("%s,%s,%s,%s,%s", PaymentMarker, r.CoinImage, r.CoinName, r.CoinSymbol, r.Amount.String())
}

// PaymentMarker prefixes both payment commands and receipts.
const PaymentMarker = "@payment"
