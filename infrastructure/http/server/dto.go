package server

import (
	"coin-chat/domain"
	"encoding/json"
)

type coinResponse struct {
	ID         int    `json:"id"`
	CoinSymbol string `json:"coinSymbol"`
	CoinName   string `json:"coinName"`
	ImageURL   string `json:"imageUrl"`
}

type coinPageResponse struct {
	Coin       []coinResponse `json:"coin"`
	TotalPages int            `json:"total_pages"`
}

type userResponse struct {
	Email          string `json:"email"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

// holdingResponse keeps the quantity a JSON number without going through float64.
type holdingResponse struct {
	Email    string       `json:"email"`
	Coin     coinResponse `json:"coin"`
	Quantity json.Number  `json:"quantity"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func toCoinResponse(c domain.Coin) coinResponse {
	return coinResponse{
		ID:         int(c.ID),
		CoinSymbol: c.TradingSymbol(),
		CoinName:   c.Name,
		ImageURL:   c.ImageURL,
	}
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{Email: u.Email, Username: u.Username, ProfilePicture: u.ProfilePicture}
}

func toHoldingResponse(l domain.WalletLine) holdingResponse {
	return holdingResponse{
		Email:    l.Email,
		Coin:     toCoinResponse(l.Coin),
		Quantity: json.Number(l.Quantity.String()),
	}
}
