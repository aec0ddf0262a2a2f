package services

import (
	"coin-chat/domain"
	"coin-chat/domain/payment"
	"coin-chat/errors"
	"coin-chat/mocks"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var bitcoin = domain.Coin{ID: 1, Symbol: "btc", Name: "Bitcoin", ImageURL: "https://img/btc.png"}

func mustParse(t *testing.T, body string) payment.Command {
	t.Helper()
	parsed, ok := payment.Parse(body).(payment.Payment)
	require.True(t, ok, "expected a payment command for %q", body)
	return parsed.Command
}

func newPaymentService(ctrl *gomock.Controller) (*PaymentService, *mocks.MockIUserRepository, *mocks.MockICoinRepository, *mocks.MockILedgerRepository) {
	users := mocks.NewMockIUserRepository(ctrl)
	coins := mocks.NewMockICoinRepository(ctrl)
	ledger := mocks.NewMockILedgerRepository(ctrl)
	return NewPaymentService(users, coins, ledger, slog.Default()), users, coins, ledger
}

func TestPaymentService_Pay(t *testing.T) {
	t.Run("should transfer and build a receipt when every check passes", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		svc, users, coins, ledger := newPaymentService(ctrl)

		users.EXPECT().Exists("bob").Return(true, nil)
		coins.EXPECT().GetCoin(domain.CoinID(1)).Return(bitcoin, nil)
		ledger.EXPECT().Transfer("alice", "bob", domain.CoinID(1), decimal.RequireFromString("3")).Return(nil)

		receipt, err := svc.Pay("alice", mustParse(t, "@payment,1,3,bob_1"))

		req.NoError(err)
		req.Equal("@payment,https://img/btc.png,Bitcoin,btc,3", receipt.String())
	})

	t.Run("should report unknown recipient when the user does not exist", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		svc, users, _, _ := newPaymentService(ctrl)

		// Given a recipient missing from the directory
		users.EXPECT().Exists("ghost").Return(false, nil)

		_, err := svc.Pay("alice", mustParse(t, "@payment,1,3,ghost_1"))

		// Then no coin lookup nor transfer happens
		req.ErrorIs(err, errors.ErrUnknownRecipient)
		req.ErrorIs(err, errors.ErrRecipientNotFound)
	})

	t.Run("should report unknown recipient when the address targets another coin", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		svc, users, _, _ := newPaymentService(ctrl)

		users.EXPECT().Exists("bob").Return(true, nil)

		_, err := svc.Pay("alice", mustParse(t, "@payment,1,3,bob_2"))

		req.ErrorIs(err, errors.ErrUnknownRecipient)
		req.ErrorIs(err, errors.ErrCoinMismatch)
	})

	t.Run("should report unknown recipient when the coin is not in the catalog", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		svc, users, coins, _ := newPaymentService(ctrl)

		users.EXPECT().Exists("bob").Return(true, nil)
		coins.EXPECT().GetCoin(domain.CoinID(99)).Return(domain.Coin{}, errors.ErrCoinNotFound)

		_, err := svc.Pay("alice", mustParse(t, "@payment,99,3,bob_99"))

		req.ErrorIs(err, errors.ErrUnknownRecipient)
		req.ErrorIs(err, errors.ErrCoinNotFound)
	})

	t.Run("should check the recipient before the amount", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		svc, users, _, _ := newPaymentService(ctrl)

		// Given both an unknown recipient and a malformed amount
		users.EXPECT().Exists("ghost").Return(false, nil)

		_, err := svc.Pay("alice", mustParse(t, "@payment,1,abc,ghost_1"))

		// Then the address error wins
		req.ErrorIs(err, errors.ErrUnknownRecipient)
		req.False(stderrors.Is(err, errors.ErrMalformedAmount))
	})

	t.Run("should reject a malformed amount without touching the ledger", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		svc, users, coins, ledger := newPaymentService(ctrl)

		amounts := []string{"abc", "0", "-1"}
		users.EXPECT().Exists("bob").Return(true, nil).Times(len(amounts))
		coins.EXPECT().GetCoin(domain.CoinID(1)).Return(bitcoin, nil).Times(len(amounts))
		ledger.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		for _, amount := range amounts {
			_, err := svc.Pay("alice", mustParse(t, "@payment,1,"+amount+",bob_1"))
			req.ErrorIs(err, errors.ErrMalformedAmount, amount)
		}
	})

	t.Run("should surface the available balance when funds are short", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		svc, users, coins, ledger := newPaymentService(ctrl)

		users.EXPECT().Exists("bob").Return(true, nil)
		coins.EXPECT().GetCoin(domain.CoinID(1)).Return(bitcoin, nil)
		ledger.EXPECT().
			Transfer("alice", "bob", domain.CoinID(1), decimal.RequireFromString("6")).
			Return(errors.InsufficientBalanceError{Available: decimal.RequireFromString("4")})

		_, err := svc.Pay("alice", mustParse(t, "@payment,1,6,bob_1"))

		req.ErrorIs(err, errors.ErrInsufficientBalance)
		req.Equal("Insufficient balance. Available 4", errors.PublicMessage(err))
	})

	t.Run("should report a failed payment when the ledger breaks", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		svc, users, coins, ledger := newPaymentService(ctrl)

		users.EXPECT().Exists("bob").Return(true, nil)
		coins.EXPECT().GetCoin(domain.CoinID(1)).Return(bitcoin, nil)
		// Given a storage failure inside the transfer
		ledger.EXPECT().Transfer("alice", "bob", domain.CoinID(1), decimal.RequireFromString("6")).
			Return(errors.ErrTransferContention)

		_, err := svc.Pay("alice", mustParse(t, "@payment,1,6,bob_1"))

		// Then the cause is kept and the sender sees a generic payment failure
		req.ErrorIs(err, errors.ErrPaymentFailed)
		req.ErrorIs(err, errors.ErrTransferContention)
		req.False(stderrors.Is(err, errors.ErrInsufficientBalance))
		req.Equal("Payment failed", errors.PublicMessage(err))
	})
}
