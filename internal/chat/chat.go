// Package chat keeps the policy assistant transcript. The backend answers
// questions; this service owns the conversation history and folds failures
// into the transcript as error messages rather than breaking the page.
package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/openaudit/auditlens/internal/backend"
	"github.com/openaudit/auditlens/internal/idgen"
	"github.com/openaudit/auditlens/internal/metrics"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleError     = "error"
)

// Message is one transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Sources   []string  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// maxTranscript caps history so a long-lived session cannot grow unbounded.
const maxTranscript = 200

// Asker is the slice of the backend client the service needs.
type Asker interface {
	Chat(ctx context.Context, message string) (*backend.ChatReply, error)
}

// Service owns the transcript.
type Service struct {
	api    Asker
	logger *slog.Logger

	mu       sync.RWMutex
	messages []Message
}

// NewService creates an empty transcript backed by the given API.
func NewService(api Asker, logger *slog.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// Ask records the question, queries the assistant, and records the answer.
// A failed query appends an error message instead of returning one, so the
// transcript always reflects what the operator saw.
func (s *Service) Ask(ctx context.Context, text string) Message {
	s.append(Message{
		ID:        idgen.WithPrefix("msg_"),
		Role:      RoleUser,
		Text:      text,
		CreatedAt: time.Now(),
	})

	reply, err := s.api.Chat(ctx, text)
	if err != nil {
		metrics.ChatMessagesTotal.WithLabelValues("error").Inc()
		s.logger.Warn("chat query failed", "error", err)
		msg := Message{
			ID:        idgen.WithPrefix("msg_"),
			Role:      RoleError,
			Text:      "The assistant is unavailable right now. Your question was not lost; try again shortly.",
			CreatedAt: time.Now(),
		}
		s.append(msg)
		return msg
	}

	metrics.ChatMessagesTotal.WithLabelValues("ok").Inc()
	msg := Message{
		ID:        idgen.WithPrefix("msg_"),
		Role:      RoleAssistant,
		Text:      reply.Reply,
		Sources:   reply.Sources,
		CreatedAt: time.Now(),
	}
	s.append(msg)
	return msg
}

// Transcript returns a copy of the conversation so far.
func (s *Service) Transcript() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Clear empties the transcript.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

func (s *Service) append(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	if len(s.messages) > maxTranscript {
		s.messages = s.messages[len(s.messages)-maxTranscript:]
	}
}
