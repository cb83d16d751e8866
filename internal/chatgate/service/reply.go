package service

import (
	"context"
	"fmt"
	"strings"
)

// ReplyGenerator produces the system's reply to an accepted user message.
// The pipeline treats it as opaque; swap in anything that satisfies the
// interface.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, content string) (string, error)
}

// CannedReplier answers exact matches from a fixed table and echoes
// everything else. It is the default, dependency-free generator.
type CannedReplier struct {
	replies map[string]string
}

func NewCannedReplier() *CannedReplier {
	return &CannedReplier{
		replies: map[string]string{
			"hello":       "Hello! How can I help you today?",
			"hi":          "Hi there! What can I do for you?",
			"how are you": "I'm doing great! Thanks for asking. How can I assist you?",
			"help":        "I'm here to help! You can ask me questions or just chat with me.",
			"bye":         "Goodbye! Have a great day!",
		},
	}
}

func (r *CannedReplier) GenerateReply(_ context.Context, content string) (string, error) {
	if reply, ok := r.replies[strings.ToLower(strings.TrimSpace(content))]; ok {
		return reply, nil
	}
	return fmt.Sprintf("You said: '%s'. I'm a simple bot, but I heard you!", content), nil
}
