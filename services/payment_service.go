//go:generate go run go.uber.org/mock/mockgen -source=payment_service.go -destination=../mocks/mock_payment_service.go -package=mocks
package services

import (
	"coin-chat/domain"
	"coin-chat/domain/payment"
	"coin-chat/errors"
	"coin-chat/repositories"
	stderrors "errors"
	"fmt"
	"log/slog"
)

type IPaymentService interface {
	Pay(sender string, cmd payment.Command) (domain.Receipt, error)
}

type PaymentService struct {
	users  repositories.IUserRepository
	coins  repositories.ICoinRepository
	ledger repositories.ILedgerRepository
	log    *slog.Logger
}

func NewPaymentService(
	users repositories.IUserRepository,
	coins repositories.ICoinRepository,
	ledger repositories.ILedgerRepository,
	log *slog.Logger,
) *PaymentService {
	return &PaymentService{users: users, coins: coins, ledger: ledger, log: log}
}

// Pay validates a parsed payment and moves the coins.
// Checks run in a fixed order and the first failure wins:
//  1. the address targets an existing user and the coin being paid
//  2. the amount is a positive number
//  3. the sender holds enough, checked inside the transfer transaction
//
// Nothing is written unless every check passed.
func (s *PaymentService) Pay(sender string, cmd payment.Command) (domain.Receipt, error) {
	coin, err := s.resolveAddress(cmd)
	if err != nil {
		s.log.Info("Payment refused", "sender", sender, "recipient", cmd.Recipient, "error", err)
		return domain.Receipt{}, err
	}

	amount, err := cmd.Amount()
	if err != nil {
		s.log.Info("Payment refused", "sender", sender, "amount", cmd.RawAmount, "error", err)
		return domain.Receipt{}, err
	}

	if err = s.ledger.Transfer(sender, cmd.Recipient, coin.ID, amount); err != nil {
		if stderrors.Is(err, errors.ErrInsufficientBalance) {
			s.log.Info("Payment refused", "sender", sender, "coin_id", coin.ID, "error", err)
			return domain.Receipt{}, err
		}
		s.log.Error("Payment transfer failed", "sender", sender, "coin_id", coin.ID, "error", err)
		return domain.Receipt{}, fmt.Errorf("%w: %w", errors.ErrPaymentFailed, err)
	}

	s.log.Info("Payment done", "sender", sender, "recipient", cmd.Recipient, "coin", coin.Symbol, "amount", amount.String())
	return domain.NewReceipt(coin, amount), nil
}

// resolveAddress returns the coin being paid. Every reason for the address to
// be unusable is reported as ErrUnknownRecipient, with the cause wrapped.
func (s *PaymentService) resolveAddress(cmd payment.Command) (domain.Coin, error) {
	exists, err := s.users.Exists(cmd.Recipient)
	if err != nil {
		return domain.Coin{}, fmt.Errorf("%w: %w", errors.ErrUnknownRecipient, err)
	}
	if !exists {
		return domain.Coin{}, fmt.Errorf("%w: %w: %s", errors.ErrUnknownRecipient, errors.ErrRecipientNotFound, cmd.Recipient)
	}
	if !cmd.CoinMatches() {
		return domain.Coin{}, fmt.Errorf("%w: %w: %s != %s", errors.ErrUnknownRecipient, errors.ErrCoinMismatch, cmd.RawCoinID, cmd.AddressCoinID)
	}
	coin, err := s.coins.GetCoin(cmd.CoinID)
	if err != nil {
		return domain.Coin{}, fmt.Errorf("%w: %w", errors.ErrUnknownRecipient, err)
	}
	return coin, nil
}
