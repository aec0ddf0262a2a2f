//go:generate go run go.uber.org/mock/mockgen -source=ledger.go -destination=../mocks/mock_ledger_repository.go -package=mocks
package repositories

import (
	"coin-chat/domain"
	"coin-chat/errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type ILedgerRepository interface {
	GetBalance(username string, coinID domain.CoinID) (decimal.Decimal, error)
	AdjustBalance(username string, coinID domain.CoinID, delta decimal.Decimal) (decimal.Decimal, error)
	Transfer(from, to string, coinID domain.CoinID, amount decimal.Decimal) error
	Holdings(username string) ([]domain.Holding, error)
}

// LedgerRepository serializes writers of a balance with an in-process lock
// per ledger key: concurrent payments queue instead of failing on Badger
// conflicts.
type LedgerRepository struct {
	db    *badger.DB
	locks *keyLocks
	log   *slog.Logger
}

func NewLedgerRepository(db *badger.DB, log *slog.Logger) LedgerRepository {
	return LedgerRepository{db: db, locks: newKeyLocks(), log: log}
}

// DiskHolding is the stored form of a ledger entry.
type DiskHolding struct {
	Username  string          `json:"username"`
	CoinID    int             `json:"coin_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UpdatedAt int64           `json:"updated_at"`
}

// Keys are "ledger:{username}:{coin_id}" so that all holdings of a user
// are found with a single prefix scan.
func ledgerKey(username string, coinID domain.CoinID) []byte {
	return []byte(fmt.Sprintf("ledger:%s:%010d", username, coinID))
}

func ledgerPrefix(username string) []byte {
	return []byte(fmt.Sprintf("ledger:%s:", username))
}

// GetBalance returns the quantity held, zero when the user never held the coin.
func (l LedgerRepository) GetBalance(username string, coinID domain.CoinID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := l.db.View(func(txn *badger.Txn) error {
		var err error
		balance, err = readBalance(txn, username, coinID)
		return err
	})
	return balance, err
}

// AdjustBalance applies a signed delta and returns the new quantity.
// The row is created when absent. A delta that would make the quantity
// negative is rejected and nothing is written.
func (l LedgerRepository) AdjustBalance(username string, coinID domain.CoinID, delta decimal.Decimal) (decimal.Decimal, error) {
	unlock := l.locks.lock(string(ledgerKey(username, coinID)))
	defer unlock()

	var updated decimal.Decimal
	err := updateWithRetry(l.db, func(txn *badger.Txn) error {
		current, err := readBalance(txn, username, coinID)
		if err != nil {
			return err
		}
		next := current.Add(delta)
		if next.IsNegative() {
			return errors.InsufficientBalanceError{Available: current}
		}
		updated = next
		return writeBalance(txn, username, coinID, next)
	})
	return updated, err
}

// Transfer moves amount of a coin from one user to another inside a single
// transaction. Both balances are locked first, so concurrent transfers
// touching either account wait for each other and then read the committed
// balance.
func (l LedgerRepository) Transfer(from, to string, coinID domain.CoinID, amount decimal.Decimal) error {
	unlock := l.locks.lock(string(ledgerKey(from, coinID)), string(ledgerKey(to, coinID)))
	defer unlock()

	return updateWithRetry(l.db, func(txn *badger.Txn) error {
		senderBalance, err := readBalance(txn, from, coinID)
		if err != nil {
			return err
		}
		if senderBalance.LessThan(amount) {
			return errors.InsufficientBalanceError{Available: senderBalance}
		}
		if err = writeBalance(txn, from, coinID, senderBalance.Sub(amount)); err != nil {
			return err
		}
		// Read after the debit: a self-payment sees its own pending write.
		recipientBalance, err := readBalance(txn, to, coinID)
		if err != nil {
			return err
		}
		return writeBalance(txn, to, coinID, recipientBalance.Add(amount))
	})
}

// Holdings lists every coin held by a user, zero quantities included.
func (l LedgerRepository) Holdings(username string) ([]domain.Holding, error) {
	var disk []DiskHolding
	err := l.db.View(func(txn *badger.Txn) error {
		var err error
		disk, err = scanJSON[DiskHolding](txn, ledgerPrefix(username))
		return err
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(disk, func(h DiskHolding, _ int) domain.Holding {
		return toHolding(h)
	}), nil
}

func readBalance(txn *badger.Txn, username string, coinID domain.CoinID) (decimal.Decimal, error) {
	var holding DiskHolding
	found, err := getJSON(txn, ledgerKey(username, coinID), &holding)
	if err != nil || !found {
		return decimal.Zero, err
	}
	return holding.Quantity, nil
}

func writeBalance(txn *badger.Txn, username string, coinID domain.CoinID, quantity decimal.Decimal) error {
	return setJSON(txn, ledgerKey(username, coinID), DiskHolding{
		Username:  username,
		CoinID:    int(coinID),
		Quantity:  quantity,
		UpdatedAt: time.Now().UTC().Unix(),
	})
}

func toHolding(h DiskHolding) domain.Holding {
	return domain.Holding{
		Username: h.Username,
		CoinID:   domain.CoinID(h.CoinID),
		Quantity: h.Quantity,
	}
}
