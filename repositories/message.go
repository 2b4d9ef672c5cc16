//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"livechat/domain"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const messagePrefix = "msg:"

type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	GetMessages(query MessageQuery) ([]DiskMessage, *string, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

type DiskMessage struct {
	ID        uuid.UUID `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Msg       string    `json:"msg"`
	CreatedAt time.Time `json:"created_at"`
}

// ToMessage rebuilds the domain message from its stored record.
func (m DiskMessage) ToMessage() domain.Message {
	return domain.Message{
		ID:        m.ID,
		Sender:    domain.Identity(m.From),
		Recipient: m.To,
		Body:      m.Msg,
		CreatedAt: m.CreatedAt,
	}
}

// MessageQuery narrows a history read.
// To keeps only messages addressed to that recipient, Cursor resumes after a
// previously returned key and Limit overrides the repository default.
type MessageQuery struct {
	To     *string
	Cursor *string
	Limit  *int
}

func NewMessageQuery(query domain.HistoryQuery) MessageQuery {
	return MessageQuery{To: query.To, Cursor: query.Cursor, Limit: query.Limit}
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Keep two messages created at the same nanosecond apart.
func (m MessageRepository) StoreMessage(message DiskMessage) error {
	key := messageKey(message)
	bytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("unable to encode message %s: %w", message.ID, err)
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetMessages returns stored messages newest first using a reverse prefix scan.
// The returned cursor is the key suffix of the last message read, nil when nothing was read.
func (m MessageRepository) GetMessages(query MessageQuery) ([]DiskMessage, *string, error) {
	limit := m.limitMessages
	if query.Limit != nil {
		limit = query.Limit
	}

	var diskMessages []DiskMessage
	var lastKey *string
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch query.Cursor {
		case nil:
			// Start right after the newest possible timestamp and walk backwards
			seekKey = append([]byte(messagePrefix), []byte("9999999999999999999")...)
		default:
			seekKey = append([]byte(messagePrefix), []byte(*query.Cursor)...)
		}

		it.Seek(seekKey)

		if query.Cursor != nil && it.ValidForPrefix(prefix) &&
			string(it.Item().Key()) == string(seekKey) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if limit != nil && len(diskMessages) == *limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *limit))
				break
			}
			item := it.Item()
			var message DiskMessage
			err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &message)
			})
			if err != nil {
				return fmt.Errorf("unable to decode message %s: %w", item.Key(), err)
			}
			// Memorize cursor part of the actual key
			key := string(item.KeyCopy(nil)[len(messagePrefix):])
			lastKey = &key
			if query.To != nil && message.To != *query.To {
				continue
			}
			diskMessages = append(diskMessages, message)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return diskMessages, lastKey, nil
}

func messageKey(message DiskMessage) string {
	return fmt.Sprintf("%s%019d:%s", messagePrefix, message.CreatedAt.UnixNano(), message.ID)
}
