package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	req := require.New(t)
	password := "correct horse battery"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := VerifyPassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = VerifyPassword("wrong password", hash)
	req.NoError(err)
	req.False(match)

	_, err = VerifyPassword(password, "not-a-hash")
	req.ErrorIs(err, ErrInvalidHash)
}

func TestRegistrationValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{Email: "alice@example.com", Username: "alice", Password: "password123"}, false},
		{"Invalid email", RegisterRequest{Email: "notanemail", Username: "alice", Password: "password123"}, true},
		{"Missing username", RegisterRequest{Email: "alice@example.com", Password: "password123"}, true},
		{"Username with address separator", RegisterRequest{Email: "alice@example.com", Username: "alice_1", Password: "password123"}, true},
		{"Username with comma", RegisterRequest{Email: "alice@example.com", Username: "al,ice", Password: "password123"}, true},
		{"Password too short", RegisterRequest{Email: "alice@example.com", Username: "alice", Password: "short"}, true},
		{"Password too long", RegisterRequest{Email: "alice@example.com", Username: "alice", Password: strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}
