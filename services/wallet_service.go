package services

import (
	"coin-chat/domain"
	"coin-chat/errors"
	"coin-chat/repositories"
	stderrors "errors"
	"log/slog"

	"github.com/shopspring/decimal"
)

type IWalletService interface {
	Buy(username string, coinID domain.CoinID, quantity decimal.Decimal) (domain.Coin, error)
	Sell(username string, coinID domain.CoinID, quantity decimal.Decimal) (domain.Coin, error)
	Holdings(username string) ([]domain.WalletLine, error)
}

// WalletService adjusts a single balance at a time. Transfers between users
// go through PaymentService.
type WalletService struct {
	users  repositories.IUserRepository
	coins  repositories.ICoinRepository
	ledger repositories.ILedgerRepository
	log    *slog.Logger
}

func NewWalletService(
	users repositories.IUserRepository,
	coins repositories.ICoinRepository,
	ledger repositories.ILedgerRepository,
	log *slog.Logger,
) *WalletService {
	return &WalletService{users: users, coins: coins, ledger: ledger, log: log}
}

func (s *WalletService) Buy(username string, coinID domain.CoinID, quantity decimal.Decimal) (domain.Coin, error) {
	return s.adjust(username, coinID, quantity, quantity)
}

func (s *WalletService) Sell(username string, coinID domain.CoinID, quantity decimal.Decimal) (domain.Coin, error) {
	return s.adjust(username, coinID, quantity, quantity.Neg())
}

func (s *WalletService) adjust(username string, coinID domain.CoinID, quantity, delta decimal.Decimal) (domain.Coin, error) {
	exists, err := s.users.Exists(username)
	if err != nil {
		return domain.Coin{}, err
	}
	if !exists {
		return domain.Coin{}, errors.ErrUserNotFound
	}
	coin, err := s.coins.GetCoin(coinID)
	if err != nil {
		return domain.Coin{}, err
	}
	if !quantity.IsPositive() {
		return domain.Coin{}, errors.ErrInvalidQuantity
	}
	balance, err := s.ledger.AdjustBalance(username, coinID, delta)
	if err != nil {
		return domain.Coin{}, err
	}
	s.log.Info("Balance adjusted", "user", username, "coin", coin.Name, "delta", delta.String(), "balance", balance.String())
	return coin, nil
}

// Holdings lists the user's coins with their metadata. Coins missing from the
// catalog are skipped.
func (s *WalletService) Holdings(username string) ([]domain.WalletLine, error) {
	user, err := s.users.GetUser(username)
	if err != nil {
		return nil, err
	}
	holdings, err := s.ledger.Holdings(username)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.WalletLine, 0, len(holdings))
	for _, h := range holdings {
		coin, err := s.coins.GetCoin(h.CoinID)
		if stderrors.Is(err, errors.ErrCoinNotFound) {
			s.log.Warn("Holding on unknown coin", "user", username, "coin_id", h.CoinID)
			continue
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.WalletLine{Email: user.Email, Coin: coin, Quantity: h.Quantity})
	}
	return lines, nil
}
