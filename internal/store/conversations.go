package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Message senders. The application only ever appends these two.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Message is one entry in a conversation. Immutable once appended.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"timestamp"`
}

// Conversation is the single per-user message history. Messages are ordered
// chronologically and only ever appended.
//
// Note: concurrent requests for the same user are not serialized anywhere;
// two simultaneous load-append-save sequences can lose updates.
type Conversation struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Messages  []Message
	UpdatedAt time.Time

	// exists marks the conversation row as present in the database;
	// persisted counts how many leading messages are already written.
	exists    bool
	persisted int
}

// Append adds a message in memory. Nothing is written until
// SaveConversation.
func (c *Conversation) Append(sender, text string, at time.Time) Message {
	msg := Message{
		ID:        uuid.New(),
		Sender:    sender,
		Text:      text,
		CreatedAt: at,
	}
	c.Messages = append(c.Messages, msg)
	return msg
}

// LoadOrCreate fetches the conversation for a user, or returns a fresh
// in-memory one bound to that user. Conversations are created lazily: a new
// one is not written until its first SaveConversation.
func (s *Store) LoadOrCreate(ctx context.Context, userID uuid.UUID) (*Conversation, error) {
	conv, err := s.conversationByUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &Conversation{ID: uuid.New(), UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// LatestConversation returns the user's most recently updated conversation,
// or ErrNotFound. Read-only; used for history display.
func (s *Store) LatestConversation(ctx context.Context, userID uuid.UUID) (*Conversation, error) {
	return s.conversationByUser(ctx, userID)
}

func (s *Store) conversationByUser(ctx context.Context, userID uuid.UUID) (*Conversation, error) {
	conv := &Conversation{UserID: userID, exists: true}
	err := s.pool.QueryRow(ctx, `
		SELECT id, updated_at FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1`,
		userID,
	).Scan(&conv.ID, &conv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select conversation: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, sender, body, created_at FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at, id`,
		conv.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Sender, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		conv.Messages = append(conv.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	conv.persisted = len(conv.Messages)
	return conv, nil
}

// SaveConversation writes the conversation row (insert on first save) and
// any messages appended since the last save, and bumps updated_at. No
// retries here: storage faults propagate to the caller.
func (s *Store) SaveConversation(ctx context.Context, conv *Conversation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	if conv.exists {
		_, err = tx.Exec(ctx, `
			UPDATE conversations SET updated_at = $1 WHERE id = $2`,
			now, conv.ID,
		)
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO conversations (id, user_id, created_at, updated_at)
			VALUES ($1, $2, $3, $3)`,
			conv.ID, conv.UserID, now,
		)
	}
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}

	for _, m := range conv.Messages[conv.persisted:] {
		_, err = tx.Exec(ctx, `
			INSERT INTO messages (id, conversation_id, sender, body, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			m.ID, conv.ID, m.Sender, m.Text, m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	conv.exists = true
	conv.persisted = len(conv.Messages)
	conv.UpdatedAt = now
	return nil
}
