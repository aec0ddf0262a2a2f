//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"coin-chat/domain"
	"coin-chat/errors"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IUserRepository interface {
	CreateUser(user domain.User) error
	GetUser(username string) (domain.User, error)
	Exists(username string) (bool, error)
	ListUsers() ([]domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// DiskUser is the stored form of an account. Equivalent to DiskMessage for
// the account domain.
type DiskUser struct {
	Email          string `json:"email"`
	Username       string `json:"username"`
	PasswordHash   string `json:"password_hash"`
	ProfilePicture string `json:"profile_picture"`
	CreatedAt      int64  `json:"created_at"`
}

func userKey(username string) []byte {
	return []byte("user:" + username)
}

func userEmailKey(email string) []byte {
	return []byte("idx:user:email:" + email)
}

// CreateUser persists the account. Both the username and the email must be free.
func (u UserRepository) CreateUser(user domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	return updateWithRetry(u.db, func(txn *badger.Txn) error {
		for _, key := range [][]byte{userKey(user.Username), userEmailKey(user.Email)} {
			_, err := txn.Get(key)
			if err == nil {
				return errors.ErrUserAlreadyExists
			}
			if !stderrors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		if err := setJSON(txn, userKey(user.Username), fromUser(user)); err != nil {
			return fmt.Errorf("store user: %w", err)
		}
		return txn.Set(userEmailKey(user.Email), []byte(user.Username))
	})
}

func (u UserRepository) GetUser(username string) (domain.User, error) {
	var disk DiskUser
	err := u.db.View(func(txn *badger.Txn) error {
		found, err := getJSON(txn, userKey(username), &disk)
		if err != nil {
			return err
		}
		if !found {
			return errors.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return toUser(disk), nil
}

func (u UserRepository) Exists(username string) (bool, error) {
	_, err := u.GetUser(username)
	if stderrors.Is(err, errors.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (u UserRepository) ListUsers() ([]domain.User, error) {
	var disk []DiskUser
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		disk, err = scanJSON[DiskUser](txn, []byte("user:"))
		return err
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(disk, func(d DiskUser, _ int) domain.User {
		return toUser(d)
	}), nil
}

func fromUser(user domain.User) DiskUser {
	return DiskUser{
		Email:          user.Email,
		Username:       user.Username,
		PasswordHash:   user.PasswordHash,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt.Unix(),
	}
}

func toUser(d DiskUser) domain.User {
	return domain.User{
		Email:          d.Email,
		Username:       d.Username,
		PasswordHash:   d.PasswordHash,
		ProfilePicture: d.ProfilePicture,
		CreatedAt:      time.Unix(d.CreatedAt, 0).UTC(),
	}
}
