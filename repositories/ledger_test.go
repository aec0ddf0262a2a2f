package repositories

import (
	"coin-chat/domain"
	"coin-chat/errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const btc = domain.CoinID(1)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLedger_GetBalance_Absent_Is_Zero(t *testing.T) {
	req := require.New(t)
	repository := NewLedgerRepository(openTestDB(t), slog.Default())

	balance, err := repository.GetBalance("alice", btc)

	req.NoError(err)
	req.True(balance.IsZero())
}

func TestLedger_AdjustBalance_Creates_And_Refuses_Negative(t *testing.T) {
	req := require.New(t)
	repository := NewLedgerRepository(openTestDB(t), slog.Default())

	// Given alice bought 3 BTC
	balance, err := repository.AdjustBalance("alice", btc, dec("3"))
	req.NoError(err)
	req.True(dec("3").Equal(balance))

	// When she tries to sell 5
	_, err = repository.AdjustBalance("alice", btc, dec("-5"))

	// Then it is refused and the balance is untouched
	req.ErrorIs(err, errors.ErrInsufficientBalance)
	balance, err = repository.GetBalance("alice", btc)
	req.NoError(err)
	req.True(dec("3").Equal(balance))
}

func TestLedger_Transfer_Conserves_Balances(t *testing.T) {
	req := require.New(t)
	repository := NewLedgerRepository(openTestDB(t), slog.Default())
	_, err := repository.AdjustBalance("alice", btc, dec("10"))
	req.NoError(err)
	_, err = repository.AdjustBalance("bob", btc, dec("1.5"))
	req.NoError(err)

	err = repository.Transfer("alice", "bob", btc, dec("2.25"))
	req.NoError(err)

	alice, err := repository.GetBalance("alice", btc)
	req.NoError(err)
	bob, err := repository.GetBalance("bob", btc)
	req.NoError(err)
	req.True(dec("7.75").Equal(alice))
	req.True(dec("3.75").Equal(bob))
	req.True(dec("11.5").Equal(alice.Add(bob)))
}

func TestLedger_Transfer_Creates_Recipient_Row(t *testing.T) {
	req := require.New(t)
	repository := NewLedgerRepository(openTestDB(t), slog.Default())
	_, err := repository.AdjustBalance("alice", btc, dec("1"))
	req.NoError(err)

	req.NoError(repository.Transfer("alice", "carol", btc, dec("1")))

	holdings, err := repository.Holdings("carol")
	req.NoError(err)
	req.Len(holdings, 1)
	req.Equal(btc, holdings[0].CoinID)
	req.True(dec("1").Equal(holdings[0].Quantity))
}

func TestLedger_Transfer_Insufficient_Balance_Changes_Nothing(t *testing.T) {
	req := require.New(t)
	repository := NewLedgerRepository(openTestDB(t), slog.Default())
	_, err := repository.AdjustBalance("alice", btc, dec("1"))
	req.NoError(err)

	err = repository.Transfer("alice", "bob", btc, dec("2"))

	var insufficient errors.InsufficientBalanceError
	req.ErrorAs(err, &insufficient)
	req.True(dec("1").Equal(insufficient.Available))
	alice, _ := repository.GetBalance("alice", btc)
	bob, _ := repository.GetBalance("bob", btc)
	req.True(dec("1").Equal(alice))
	req.True(bob.IsZero())
}

func TestLedger_Transfer_To_Self_Keeps_Balance(t *testing.T) {
	req := require.New(t)
	repository := NewLedgerRepository(openTestDB(t), slog.Default())
	_, err := repository.AdjustBalance("alice", btc, dec("4"))
	req.NoError(err)

	req.NoError(repository.Transfer("alice", "alice", btc, dec("3")))

	alice, err := repository.GetBalance("alice", btc)
	req.NoError(err)
	req.True(dec("4").Equal(alice))
}

func TestLedger_Concurrent_Transfers_Never_Overdraw(t *testing.T) {
	req := require.New(t)
	repository := NewLedgerRepository(openTestDB(t), slog.Default())

	// Given alice owns 10 BTC
	_, err := repository.AdjustBalance("alice", btc, dec("10"))
	req.NoError(err)

	// When two payments of 6 leave at the same time
	var wg sync.WaitGroup
	results := make(chan error, 2)
	start := make(chan struct{})
	for _, recipient := range []string{"bob", "carol"} {
		wg.Add(1)
		go func(to string) {
			defer wg.Done()
			<-start
			results <- repository.Transfer("alice", to, btc, dec("6"))
		}(recipient)
	}
	close(start)
	wg.Wait()
	close(results)

	// Then exactly one succeeds
	var succeeded, refused int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			req.ErrorIs(err, errors.ErrInsufficientBalance)
			refused++
		}
	}
	req.Equal(1, succeeded)
	req.Equal(1, refused)

	alice, _ := repository.GetBalance("alice", btc)
	bob, _ := repository.GetBalance("bob", btc)
	carol, _ := repository.GetBalance("carol", btc)
	req.True(dec("4").Equal(alice))
	req.True(dec("6").Equal(bob.Add(carol)))
}

func TestLedger_Many_Payers_One_Recipient_All_Succeed(t *testing.T) {
	req := require.New(t)
	repository := NewLedgerRepository(openTestDB(t), slog.Default())

	// Given 32 users holding 5 BTC each
	const payers = 32
	for i := range payers {
		_, err := repository.AdjustBalance(fmt.Sprintf("user%d", i), btc, dec("5"))
		req.NoError(err)
	}

	// When they all pay the shop 1 BTC at the same time
	var wg sync.WaitGroup
	results := make(chan error, payers)
	start := make(chan struct{})
	for i := range payers {
		wg.Add(1)
		go func(from string) {
			defer wg.Done()
			<-start
			results <- repository.Transfer(from, "shop", btc, dec("1"))
		}(fmt.Sprintf("user%d", i))
	}
	close(start)
	wg.Wait()
	close(results)

	// Then every funded payment went through
	for err := range results {
		req.NoError(err)
	}
	shop, err := repository.GetBalance("shop", btc)
	req.NoError(err)
	req.True(dec("32").Equal(shop))
	for i := range payers {
		balance, err := repository.GetBalance(fmt.Sprintf("user%d", i), btc)
		req.NoError(err)
		req.True(dec("4").Equal(balance))
	}
	req.Zero(repository.locks.size())
}

func TestLedger_Concurrent_Transfers_Same_Pair_All_Succeed(t *testing.T) {
	req := require.New(t)
	repository := NewLedgerRepository(openTestDB(t), slog.Default())

	// Given alice owns 1000 BTC and bob 100
	_, err := repository.AdjustBalance("alice", btc, dec("1000"))
	req.NoError(err)
	_, err = repository.AdjustBalance("bob", btc, dec("100"))
	req.NoError(err)

	// When 64 payments go from alice to bob and 16 from bob to alice, interleaved with buys
	var wg sync.WaitGroup
	results := make(chan error, 96)
	start := make(chan struct{})
	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- fn()
		}()
	}
	for range 64 {
		run(func() error { return repository.Transfer("alice", "bob", btc, dec("1")) })
	}
	for range 16 {
		run(func() error { return repository.Transfer("bob", "alice", btc, dec("1")) })
		run(func() error {
			_, err := repository.AdjustBalance("alice", btc, dec("1"))
			return err
		})
	}
	close(start)
	wg.Wait()
	close(results)

	// Then nothing was refused and the totals add up
	for err := range results {
		req.NoError(err)
	}
	alice, _ := repository.GetBalance("alice", btc)
	bob, _ := repository.GetBalance("bob", btc)
	req.True(dec("968").Equal(alice), alice.String())
	req.True(dec("148").Equal(bob), bob.String())
}

func TestLedger_Holdings_Only_For_User(t *testing.T) {
	req := require.New(t)
	repository := NewLedgerRepository(openTestDB(t), slog.Default())
	_, err := repository.AdjustBalance("alice", 1, dec("1"))
	req.NoError(err)
	_, err = repository.AdjustBalance("alice", 2, dec("2"))
	req.NoError(err)
	_, err = repository.AdjustBalance("alicia", 1, dec("5"))
	req.NoError(err)

	holdings, err := repository.Holdings("alice")

	req.NoError(err)
	req.Len(holdings, 2)
	req.Equal(domain.CoinID(1), holdings[0].CoinID)
	req.Equal(domain.CoinID(2), holdings[1].CoinID)
}
