// Package payment holds the grammar of the command embedded in chat bodies:
//
//	@payment,<coinId>,<amount>,<recipient>_<coinId>
//
// Parse only checks the shape of the command. Whether the recipient exists,
// the coins match and the amount is usable is decided by the payment service,
// in that order.
package payment

import (
	"coin-chat/domain"
	"coin-chat/errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	fieldSeparator   = ","
	addressSeparator = "_"
	commandFields    = 4
)

// Parsed is one of Plain, Payment or ParseError.
type Parsed interface {
	isParsed()
}

type Plain struct {
	Body string
}

type Payment struct {
	Command Command
}

type ParseError struct {
	Err error
}

func (Plain) isParsed()      {}
func (Payment) isParsed()    {}
func (ParseError) isParsed() {}

// Command is a payment request as written by the sender.
type Command struct {
	CoinID        domain.CoinID
	RawCoinID     string
	RawAmount     string
	Recipient     string
	AddressCoinID string
}

// Parse classifies a message body.
func Parse(body string) Parsed {
	if !strings.HasPrefix(body, domain.PaymentMarker) {
		return Plain{Body: body}
	}
	cmd, err := parseCommand(body)
	if err != nil {
		return ParseError{Err: err}
	}
	return Payment{Command: cmd}
}

func parseCommand(body string) (Command, error) {
	fields := strings.Split(body, fieldSeparator)
	if len(fields) != commandFields || fields[0] != domain.PaymentMarker {
		return Command{}, fmt.Errorf("%w: expected %d fields, got %d", errors.ErrInvalidAddressFormat, commandFields, len(fields))
	}
	coinID, err := strconv.Atoi(fields[1])
	if err != nil {
		return Command{}, fmt.Errorf("%w: coin id %q", errors.ErrInvalidAddressFormat, fields[1])
	}
	address := strings.Split(fields[3], addressSeparator)
	if len(address) != 2 || address[0] == "" {
		return Command{}, fmt.Errorf("%w: address %q", errors.ErrInvalidAddressFormat, fields[3])
	}
	return Command{
		CoinID:        domain.CoinID(coinID),
		RawCoinID:     fields[1],
		RawAmount:     fields[2],
		Recipient:     address[0],
		AddressCoinID: address[1],
	}, nil
}

// Address formats the payment address of a user for a coin.
func Address(username string, coinID domain.CoinID) string {
	return username + addressSeparator + strconv.Itoa(int(coinID))
}

// CoinMatches reports whether the address targets the coin being moved.
func (c Command) CoinMatches() bool {
	return c.RawCoinID == c.AddressCoinID
}

// Amount parses the requested amount, which must be strictly positive.
func (c Command) Amount() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(c.RawAmount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", errors.ErrMalformedAmount, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s is not positive", errors.ErrMalformedAmount, amount)
	}
	return amount, nil
}
