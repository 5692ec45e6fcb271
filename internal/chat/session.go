// Package chat implements the submit flow between an input control, a
// message surface and a reply resolver.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diogo/chatbot/internal/logging"
)

// Placeholder texts shown while a reply is pending
const (
	TypingPlaceholder   = "Typing..."
	ThinkingPlaceholder = "Thinking..."
)

// Direction tells who wrote a message
type Direction string

const (
	Outgoing Direction = "outgoing"
	Incoming Direction = "incoming"
)

// Message is one entry of the conversation
type Message struct {
	ID        string
	Text      string
	Direction Direction
}

// Surface displays messages. Replace only ever targets incoming
// placeholders the session appended itself.
type Surface interface {
	Append(msg Message)
	Replace(id, text string)
}

// Input is a text entry control
type Input interface {
	Value() string
	Reset()
}

// Responder produces the reply text for a submission
type Responder interface {
	Resolve(ctx context.Context, raw string) string
}

// Take reads and trims the input. Empty or whitespace-only input is left
// untouched and reported as not taken; otherwise the control is reset.
func Take(in Input) (string, bool) {
	text := strings.TrimSpace(in.Value())
	if text == "" {
		return "", false
	}
	in.Reset()
	return text, true
}

// NewMessage creates a message with a fresh ID
func NewMessage(text string, dir Direction) Message {
	return Message{ID: uuid.NewString(), Text: text, Direction: dir}
}

// Session drives submissions against a Surface. Each submission resolves
// independently; replies may complete out of order but each one lands in
// its own placeholder.
type Session struct {
	responder   Responder
	surface     Surface
	typingDelay time.Duration
	logger      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex // serialises surface writes
	inflight sync.WaitGroup
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithTypingDelay sets the pause before the incoming placeholder appears
func WithTypingDelay(d time.Duration) SessionOption {
	return func(s *Session) {
		s.typingDelay = d
	}
}

// WithLogger sets the session logger
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession creates a Session writing to surface
func NewSession(responder Responder, surface Surface, opts ...SessionOption) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		responder:   responder,
		surface:     surface,
		typingDelay: 300 * time.Millisecond,
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

// SubmitText trims text and starts a reply for it. Blank text is ignored;
// it reports whether anything was submitted. Callers owning an input
// control read it with Take first.
func (s *Session) SubmitText(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	s.send(text)
	return true
}

func (s *Session) send(text string) {
	s.write(func() {
		s.surface.Append(NewMessage(text, Outgoing))
	})

	s.inflight.Add(1)
	go s.reply(text)
}

// reply waits out the typing delay, shows the placeholder and fills it in
func (s *Session) reply(text string) {
	defer s.inflight.Done()

	if s.typingDelay > 0 {
		t := time.NewTimer(s.typingDelay)
		select {
		case <-t.C:
		case <-s.ctx.Done():
			t.Stop()
		}
	}

	placeholder := NewMessage(TypingPlaceholder, Incoming)
	s.write(func() {
		s.surface.Append(placeholder)
		s.surface.Replace(placeholder.ID, ThinkingPlaceholder)
	})

	start := time.Now()
	answer := s.responder.Resolve(s.ctx, text)
	s.logger.Debug("reply resolved",
		zap.String("id", placeholder.ID),
		zap.Duration("took", time.Since(start)),
	)

	s.write(func() {
		s.surface.Replace(placeholder.ID, answer)
	})
}

func (s *Session) write(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Wait blocks until every in-flight reply has been written
func (s *Session) Wait() {
	s.inflight.Wait()
}

// Close cuts pending delays short and waits for in-flight replies
func (s *Session) Close() {
	s.cancel()
	s.Wait()
}
