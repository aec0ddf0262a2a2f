package services

import (
	"coin-chat/domain"
	"coin-chat/repositories"
)

type IChatService interface {
	History(username string) ([]domain.Message, error)
}

type ChatService struct {
	chats repositories.IChatRepository
}

func NewChatService(chats repositories.IChatRepository) *ChatService {
	return &ChatService{chats: chats}
}

func (s *ChatService) History(username string) ([]domain.Message, error) {
	return s.chats.HistoryFor(username)
}
