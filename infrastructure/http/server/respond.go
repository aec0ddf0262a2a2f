package server

import (
	"coin-chat/errors"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
)

type detail struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, detail{Detail: message})
}

// writeError maps a service error to its status code and public detail.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case stderrors.Is(err, errors.ErrUserNotFound):
		writeDetail(w, http.StatusNotFound, "User not found")
	case stderrors.Is(err, errors.ErrCoinNotFound):
		writeDetail(w, http.StatusNotFound, "Coin not found")
	case stderrors.Is(err, errors.ErrInvalidQuantity):
		writeDetail(w, http.StatusBadRequest, "Quantity must be positive")
	case stderrors.Is(err, errors.ErrInsufficientBalance):
		writeDetail(w, http.StatusBadRequest, "Insufficient balance")
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		writeDetail(w, http.StatusBadRequest, "Email or username exists")
	case stderrors.Is(err, errors.ErrInvalidRequest):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		log.Error("Request failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Database error")
	}
}
