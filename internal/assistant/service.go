// Package assistant coordinates one chat request: validate, load
// conversation, consult the AI advisor under the request-level deadline, and
// persist the exchange.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shamba-labs/mazao/internal/events"
	"github.com/shamba-labs/mazao/internal/gemini"
	"github.com/shamba-labs/mazao/internal/retry"
	"github.com/shamba-labs/mazao/internal/store"
)

type ConversationStore interface {
	LoadOrCreate(ctx context.Context, userID uuid.UUID) (*store.Conversation, error)
	SaveConversation(ctx context.Context, conv *store.Conversation) error
	LatestConversation(ctx context.Context, userID uuid.UUID) (*store.Conversation, error)
}

type Replier interface {
	Reply(ctx context.Context, question string) (string, error)
}

type EventPublisher interface {
	Publish(subject string, data any) error
}

type Options struct {
	// ReplyTimeout is the request-level deadline over the whole AI
	// consultation, all attempts included. Distinct from the advisor's
	// per-call timeout.
	ReplyTimeout time.Duration
	// MaxAttempts is the total number of consultation attempts.
	MaxAttempts int
	// RetryDelay is the linear backoff unit between attempts.
	RetryDelay time.Duration
}

func DefaultOptions() Options {
	return Options{
		ReplyTimeout: 25 * time.Second,
		MaxAttempts:  3,
		RetryDelay:   time.Second,
	}
}

type Service struct {
	store   ConversationStore
	replier Replier
	pub     EventPublisher
	opts    Options
	logger  *slog.Logger
}

// New builds the orchestrator. pub may be nil to disable event publishing.
func New(cs ConversationStore, replier Replier, pub EventPublisher, opts Options, logger *slog.Logger) *Service {
	return &Service{
		store:   cs,
		replier: replier,
		pub:     pub,
		opts:    opts,
		logger:  logger,
	}
}

type ChatResult struct {
	Text      string
	MessageID uuid.UUID
}

// Chat handles one user message end to end. On AI failure the user's message
// is still persisted; only the AI reply is missing from the conversation.
func (s *Service) Chat(ctx context.Context, userID, rawMessage string) (*ChatResult, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, newError(KindAuthRequired, friendlyMessage(KindAuthRequired), err)
	}

	message := strings.TrimSpace(rawMessage)
	if message == "" {
		return nil, newError(KindInvalidInput, friendlyMessage(KindInvalidInput), nil)
	}

	conv, err := s.store.LoadOrCreate(ctx, uid)
	if err != nil {
		return nil, newError(KindStorage, friendlyMessage(KindStorage), err)
	}
	conv.Append(store.SenderUser, message, time.Now().UTC())

	// One deadline spans every consultation attempt; once it fires,
	// remaining attempts fail immediately.
	replyCtx, cancel := context.WithTimeout(ctx, s.opts.ReplyTimeout)
	defer cancel()

	attempt := 0
	text, err := retry.Do(replyCtx, retry.Policy{
		MaxAttempts: s.opts.MaxAttempts,
		Backoff:     retry.Linear(s.opts.RetryDelay),
	}, func(ctx context.Context) (string, error) {
		attempt++
		reply, err := s.replier.Reply(ctx, message)
		if err != nil {
			s.logger.Warn("assistant attempt failed", "attempt", attempt, "user_id", uid, "error", err)
		}
		return reply, err
	})
	if err != nil {
		kind := classify(err)
		// The user's question is kept even though no reply arrived.
		if saveErr := s.store.SaveConversation(ctx, conv); saveErr != nil {
			s.logger.Error("failed to persist conversation after assistant failure", "user_id", uid, "error", saveErr)
		}
		s.publish(events.SubjectAssistantFailed, map[string]any{
			"user_id":  uid.String(),
			"kind":     string(kind),
			"attempts": attempt,
		})
		return nil, newError(kind, friendlyMessage(kind), err)
	}

	aiMsg := conv.Append(store.SenderAI, text, time.Now().UTC())
	if err := s.store.SaveConversation(ctx, conv); err != nil {
		return nil, newError(KindStorage, friendlyMessage(KindStorage), err)
	}

	s.publish(events.SubjectAssistantReply, map[string]any{
		"user_id":    uid.String(),
		"message_id": aiMsg.ID.String(),
		"attempts":   attempt,
	})

	return &ChatResult{Text: text, MessageID: aiMsg.ID}, nil
}

type History struct {
	Messages    []store.Message
	LastUpdated time.Time
}

// History returns the user's conversation for display. An absent
// conversation is an empty history, not an error.
func (s *Service) History(ctx context.Context, userID string) (*History, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, newError(KindAuthRequired, friendlyMessage(KindAuthRequired), err)
	}

	conv, err := s.store.LatestConversation(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return &History{Messages: []store.Message{}}, nil
	}
	if err != nil {
		return nil, newError(KindStorage, "Failed to load conversation history", err)
	}

	msgs := conv.Messages
	if msgs == nil {
		msgs = []store.Message{}
	}
	return &History{Messages: msgs, LastUpdated: conv.UpdatedAt}, nil
}

// classify maps a consultation failure to its presentation flavor.
func classify(err error) Kind {
	var apiErr *gemini.APIError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &apiErr):
		return KindProvider
	default:
		return KindUnknown
	}
}

func (s *Service) publish(subject string, data any) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(subject, data); err != nil {
		s.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
