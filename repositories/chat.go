//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"coin-chat/domain"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IChatRepository interface {
	Append(message domain.Message) error
	HistoryFor(username string) ([]domain.Message, error)
}

const sequenceBandwidth = 100

type ChatRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

func NewChatRepository(db *badger.DB, log *slog.Logger) (*ChatRepository, error) {
	seq, err := db.GetSequence([]byte("seq:chat"), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("chat sequence: %w", err)
	}
	return &ChatRepository{db: db, seq: seq, log: log}, nil
}

// Close returns the leased sequence range to Badger.
func (c *ChatRepository) Close() error {
	return c.seq.Release()
}

type DiskMessage struct {
	ID        uuid.UUID `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Body      string    `json:"message"`
	Timestamp int64     `json:"timestamp"`
}

// Append stores the message once under "chat:{seq}" and indexes it for both
// participants under "idx:chat:{user}:{seq}". The sequence keeps receipt order
// for messages sharing the same second.
func (c *ChatRepository) Append(message domain.Message) error {
	seq, err := c.seq.Next()
	if err != nil {
		return err
	}
	disk := fromMessage(message)
	return c.db.Update(func(txn *badger.Txn) error {
		if err := setJSON(txn, []byte(fmt.Sprintf("chat:%020d", seq)), disk); err != nil {
			return err
		}
		for _, user := range lo.Uniq([]string{message.From, message.To}) {
			if err := setJSON(txn, chatIndexKey(user, seq), disk); err != nil {
				return err
			}
		}
		return nil
	})
}

// HistoryFor returns every conversation of a user. Conversations are ordered
// by first contact and messages inside one conversation by timestamp.
func (c *ChatRepository) HistoryFor(username string) ([]domain.Message, error) {
	var disk []DiskMessage
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		disk, err = scanJSON[DiskMessage](txn, []byte(fmt.Sprintf("idx:chat:%s:", username)))
		return err
	})
	if err != nil {
		return nil, err
	}
	messages := lo.Map(disk, func(d DiskMessage, _ int) domain.Message {
		return toMessage(d)
	})

	partners := lo.Uniq(lo.Map(messages, func(m domain.Message, _ int) string {
		return m.Counterpart(username)
	}))
	return lo.FlatMap(partners, func(partner string, _ int) []domain.Message {
		conversation := lo.Filter(messages, func(m domain.Message, _ int) bool {
			return m.Counterpart(username) == partner
		})
		sort.SliceStable(conversation, func(i, j int) bool {
			return conversation[i].Timestamp < conversation[j].Timestamp
		})
		return conversation
	}), nil
}

func chatIndexKey(username string, seq uint64) []byte {
	return []byte(fmt.Sprintf("idx:chat:%s:%020d", username, seq))
}

func fromMessage(m domain.Message) DiskMessage {
	return DiskMessage{
		ID:        m.ID,
		From:      m.From,
		To:        m.To,
		Body:      m.Body,
		Timestamp: m.Timestamp,
	}
}

func toMessage(d DiskMessage) domain.Message {
	return domain.Message{
		ID:        d.ID,
		From:      d.From,
		To:        d.To,
		Body:      d.Body,
		Timestamp: d.Timestamp,
	}
}
