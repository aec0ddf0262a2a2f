package services

import (
	"coin-chat/auth"
	"coin-chat/domain"
	"coin-chat/errors"
	"coin-chat/repositories"
	"fmt"
)

type IAccountService interface {
	Register(req auth.RegisterRequest) error
	ListUsers() ([]domain.User, error)
}

type AccountService struct {
	userRepository repositories.IUserRepository
}

func NewAccountService(repo repositories.IUserRepository) IAccountService {
	return &AccountService{userRepository: repo}
}

func (s *AccountService) Register(req auth.RegisterRequest) error {
	// Validate before paying for the hash.
	if err := auth.ValidateRegister(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hashing failed: %w", err)
	}

	return s.userRepository.CreateUser(domain.User{
		Email:          req.Email,
		Username:       req.Username,
		PasswordHash:   hashedPassword,
		ProfilePicture: req.ProfilePicture,
	})
}

func (s *AccountService) ListUsers() ([]domain.User, error) {
	return s.userRepository.ListUsers()
}
