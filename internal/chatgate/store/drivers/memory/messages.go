package memory

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/chatgate/internal/chatgate/domain"
)

type messagesRepo struct {
	mu       sync.Mutex // guards the segments map only
	segments map[string]*segment
}

func (r *messagesRepo) segment(username string) *segment {
	r.mu.Lock()
	defer r.mu.Unlock()

	seg, ok := r.segments[username]
	if !ok {
		seg = &segment{}
		r.segments[username] = seg
	}
	return seg
}

func (r *messagesRepo) AppendMessage(_ context.Context, m domain.Message) error {
	seg := r.segment(m.Username)

	seg.mu.Lock()
	defer seg.mu.Unlock()
	seg.msgs = append(seg.msgs, m)
	return nil
}

func (r *messagesRepo) ListMessages(_ context.Context, username string, limit int) ([]domain.Message, error) {
	seg := r.segment(username)

	seg.mu.Lock()
	defer seg.mu.Unlock()

	msgs := seg.msgs
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[len(msgs)-limit:]
	}

	// Copy so callers never observe later appends through the shared slice.
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (r *messagesRepo) ClearMessages(_ context.Context, username string) (int64, error) {
	seg := r.segment(username)

	seg.mu.Lock()
	defer seg.mu.Unlock()

	removed := int64(len(seg.msgs))
	seg.msgs = nil
	return removed, nil
}
