package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaudit/auditlens/internal/backend"
)

type fakeAsker struct {
	reply *backend.ChatReply
	err   error
}

func (f *fakeAsker) Chat(ctx context.Context, message string) (*backend.ChatReply, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func TestAsk_RecordsExchange(t *testing.T) {
	s := NewService(&fakeAsker{reply: &backend.ChatReply{
		Reply:   "Per GFR Rule 144, open tenders are required above the threshold.",
		Sources: []string{"GFR 2017"},
	}}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	msg := s.Ask(context.Background(), "When is an open tender required?")
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, []string{"GFR 2017"}, msg.Sources)
	assert.NotEmpty(t, msg.ID)

	transcript := s.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, RoleUser, transcript[0].Role)
	assert.Equal(t, RoleAssistant, transcript[1].Role)
}

func TestAsk_FailureBecomesErrorMessage(t *testing.T) {
	s := NewService(&fakeAsker{err: errors.New("request failed: 502")}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	msg := s.Ask(context.Background(), "hello?")
	assert.Equal(t, RoleError, msg.Role)
	assert.NotEmpty(t, msg.Text)

	// The question stays in the transcript ahead of the error.
	transcript := s.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, RoleUser, transcript[0].Role)
	assert.Equal(t, RoleError, transcript[1].Role)
}

func TestTranscript_ReturnsCopy(t *testing.T) {
	s := NewService(&fakeAsker{reply: &backend.ChatReply{Reply: "ok"}}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Ask(context.Background(), "q")

	copy1 := s.Transcript()
	copy1[0].Text = "mutated"
	assert.NotEqual(t, "mutated", s.Transcript()[0].Text)
}

func TestClear(t *testing.T) {
	s := NewService(&fakeAsker{reply: &backend.ChatReply{Reply: "ok"}}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Ask(context.Background(), "q")
	s.Clear()
	assert.Empty(t, s.Transcript())
}

func TestTranscript_Capped(t *testing.T) {
	s := NewService(&fakeAsker{reply: &backend.ChatReply{Reply: "ok"}}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for i := 0; i < maxTranscript; i++ {
		s.Ask(context.Background(), fmt.Sprintf("q%d", i))
	}

	transcript := s.Transcript()
	assert.Len(t, transcript, maxTranscript)
	// Oldest entries rolled off; the newest exchange is intact at the end.
	assert.Equal(t, RoleAssistant, transcript[len(transcript)-1].Role)
}
