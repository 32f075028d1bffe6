package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/civicsignal/civicsignal/core"
	"github.com/civicsignal/civicsignal/storage"
)

// MessageRepository implements storage.MessageRepository for BadgerDB.
type MessageRepository struct {
	backend *Backend
}

var _ storage.MessageRepository = (*MessageRepository)(nil)

// NewMessageRepository creates a MessageRepository over an open backend.
func NewMessageRepository(backend *Backend) *MessageRepository {
	return &MessageRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *MessageRepository) Close() error {
	return nil
}

// AppendMessages appends messages to their sessions. Messages without an ID
// get a content-based one; messages without a timestamp get the current time.
func (r *MessageRepository) AppendMessages(ctx context.Context, msgs ...*core.ChatMessage) ([]*core.ChatMessage, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, msg := range msgs {
			if msg.Timestamp.IsZero() {
				msg.Timestamp = time.Now().UTC()
			}
			if msg.Id == 0 {
				msg.Id = core.IDFromContent(msg.Session + string(msg.Role) + msg.Content + msg.Timestamp.String())
			}

			value, err := storage.MarshalChatMessage(msg)
			if err != nil {
				return err
			}
			key := makeChatMessageKey(msg.Session, msg.Timestamp, uint64(msg.Id))
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	return msgs, err
}

// RecentMessages returns the last limit messages of a session in
// chronological order. The session's keys sort by timestamp, so a reverse
// prefix scan yields the newest messages first; the window is then flipped.
func (r *MessageRepository) RecentMessages(ctx context.Context, session string, limit int) ([]*core.ChatMessage, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var newest []*core.ChatMessage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeSessionPrefix(session)

		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the last possible key in this session's range.
		seekKey := append(append([]byte{}, prefix...), 0xff)

		for iter.Seek(seekKey); iter.Valid() && len(newest) < limit; iter.Next() {
			var msg *core.ChatMessage
			err := iter.Item().Value(func(val []byte) error {
				var err error
				msg, err = storage.UnmarshalChatMessage(val)
				return err
			})
			if err != nil {
				return err
			}
			if msg != nil {
				newest = append(newest, msg)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Flip to chronological order
	results := make([]*core.ChatMessage, len(newest))
	for i, msg := range newest {
		results[len(newest)-1-i] = msg
	}
	return results, nil
}
