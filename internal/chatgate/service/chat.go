package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/domain"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/metrics"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/ratelimit"
	"github.com/aussiebroadwan/chatgate/internal/chatgate/store"
	"github.com/aussiebroadwan/chatgate/pkg/slogx"
	"github.com/google/uuid"
)

// ChatService is the pipeline behind the guarded exchange: admission
// control, then the user message, then the generated reply, appended to the
// caller's history in that order. Denied or unauthenticated requests never
// reach the ledger.
type ChatService struct {
	Store   store.Store
	Limiter *ratelimit.Limiter
	Replier ReplyGenerator
	Metrics *metrics.Collector

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// exchangeLock serializes exchanges per user so the message/reply pair
// lands adjacent in history, in arrival order. Unrelated users never share
// a lock.
func (s *ChatService) exchangeLock(username string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	l, ok := s.locks[username]
	if !ok {
		l = &sync.Mutex{}
		s.locks[username] = l
	}
	return l
}

// Send runs one guarded exchange for user. On admission the user message is
// recorded immediately, before the possibly slow reply generation: an
// abandoned request has still spent its budget and left its history entry.
// Returns the reply message; a *ratelimit.DeniedError when over budget.
func (s *ChatService) Send(ctx context.Context, user domain.User, content string) (domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Message{}, fmt.Errorf("%w: message content is required", ErrInvalidInput)
	}

	lock := s.exchangeLock(user.Username)
	lock.Lock()
	defer lock.Unlock()

	if err := s.Limiter.TryAdmit(user.Username); err != nil {
		var denied *ratelimit.DeniedError
		if errors.As(err, &denied) {
			s.Metrics.RecordDenial(string(denied.Scope))
			slogx.FromContext(ctx).Warn("exchange denied",
				"username", user.Username,
				"scope", denied.Scope,
				"usage", denied.CurrentUsage,
				"limit", denied.Limit,
				"retry_after", denied.RetryAfter,
			)
		}
		return domain.Message{}, err
	}
	s.Metrics.RecordAdmission()

	if err := s.append(ctx, user.Username, domain.RoleUser, content); err != nil {
		return domain.Message{}, err
	}

	replyContent, err := s.Replier.GenerateReply(ctx, content)
	if err != nil {
		return domain.Message{}, fmt.Errorf("generate reply: %w", err)
	}

	reply := domain.Message{
		ID:        uuid.NewString(),
		Username:  user.Username,
		Role:      domain.RoleSystem,
		Content:   replyContent,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Messages().AppendMessage(ctx, reply); err != nil {
		return domain.Message{}, err
	}

	s.Metrics.RecordExchange()
	return reply, nil
}

func (s *ChatService) append(ctx context.Context, username string, role domain.MessageRole, content string) error {
	return s.Store.Messages().AppendMessage(ctx, domain.Message{
		ID:        uuid.NewString(),
		Username:  username,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
}

// History returns the tail `limit` messages of user's history in insertion
// order (limit <= 0 returns everything), plus the count returned.
func (s *ChatService) History(ctx context.Context, username string, limit int) ([]domain.Message, error) {
	return s.Store.Messages().ListMessages(ctx, username, limit)
}

// ClearHistory wipes the user's history and reports how many messages were
// removed. A later Send starts a fresh ordered sequence.
func (s *ChatService) ClearHistory(ctx context.Context, username string) (int64, error) {
	removed, err := s.Store.Messages().ClearMessages(ctx, username)
	if err != nil {
		return 0, err
	}
	slogx.FromContext(ctx).Info("history cleared", "username", username, "removed", removed)
	return removed, nil
}

// RateLimitStatus reports both windows for username without consuming any
// budget.
func (s *ChatService) RateLimitStatus(username string) ratelimit.Status {
	return s.Limiter.Status(username)
}
