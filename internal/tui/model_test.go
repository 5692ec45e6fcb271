package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/chatbot/internal/chat"
	"github.com/diogo/chatbot/internal/config"
)

type stubResponder struct {
	mu    sync.Mutex
	reply string
	calls []string
}

func (s *stubResponder) Resolve(ctx context.Context, raw string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, raw)
	return s.reply
}

// outbox collects what the session sends to the program
type outbox chan tea.Msg

func newTestModel(t *testing.T, width int) (Model, *stubResponder) {
	m, responder, _ := newBoundModel(t, width)
	return m, responder
}

func newBoundModel(t *testing.T, width int) (Model, *stubResponder, outbox) {
	t.Helper()
	responder := &stubResponder{reply: "Hello! How are you today?"}
	m := NewModel(Options{
		Responder: responder,
		BotName:   "TestBot",
		WideWidth: 80,
		Markdown:  config.MarkdownConfig{Style: "notty"},
	})
	t.Cleanup(m.session.Close)

	box := make(outbox, 32)
	m.surface.bind(func(msg tea.Msg) { box <- msg })

	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: 40})
	return updated.(Model), responder, box
}

// deliver feeds every queued session message into the model
func deliver(t *testing.T, m Model, box outbox) Model {
	t.Helper()
	m.session.Wait()
	for {
		select {
		case msg := <-box:
			m, _ = update(t, m, msg)
		default:
			return m
		}
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	typed, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return typed, cmd
}

func TestNewModel(t *testing.T) {
	m := NewModel(Options{})

	if m.botName != "ChatBot" {
		t.Errorf("botName = %q, want ChatBot", m.botName)
	}
	if m.textarea.Height() != minInputHeight {
		t.Errorf("textarea height = %d, want %d", m.textarea.Height(), minInputHeight)
	}
	if len(m.messages) != 0 {
		t.Errorf("expected no messages, got %d", len(m.messages))
	}
	if m.Init() == nil {
		t.Error("Init should start the cursor blink")
	}
}

func TestModel_View_BeforeReady(t *testing.T) {
	m := NewModel(Options{})
	if !strings.Contains(m.View(), "Initializing") {
		t.Errorf("unexpected view before first size message: %q", m.View())
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	m, _ := newTestModel(t, 100)

	if !m.ready {
		t.Fatal("model should be ready after WindowSizeMsg")
	}
	if m.width != 100 || m.height != 40 {
		t.Errorf("dimensions = %dx%d, want 100x40", m.width, m.height)
	}
	if m.viewport.Width != 96 {
		t.Errorf("viewport width = %d, want 96", m.viewport.Width)
	}
	if !strings.Contains(m.View(), "TestBot") {
		t.Error("view should show the bot name")
	}
}

func TestModel_EnterSendsOnWideTerminal(t *testing.T) {
	m, responder, box := newBoundModel(t, 100)
	m.textarea.SetValue("  hello  ")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.textarea.Value() != "" {
		t.Errorf("input should be cleared, got %q", m.textarea.Value())
	}
	if cmd == nil {
		t.Fatal("expected a send command")
	}
	if msg := cmd(); msg != nil {
		t.Errorf("send command should not return a message, got %T", msg)
	}

	m = deliver(t, m, box)

	if len(m.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(m.messages))
	}
	if m.messages[0].Direction != chat.Outgoing || m.messages[0].Text != "hello" {
		t.Errorf("unexpected outgoing message: %+v", m.messages[0])
	}
	if m.messages[1].Direction != chat.Incoming || m.messages[1].Text != "Hello! How are you today?" {
		t.Errorf("unexpected reply: %+v", m.messages[1])
	}
	if len(responder.calls) != 1 || responder.calls[0] != "hello" {
		t.Errorf("responder calls = %v", responder.calls)
	}
	if m.pending != 0 {
		t.Errorf("pending = %d, want 0", m.pending)
	}
	if !strings.Contains(m.viewport.View(), "How are you today") {
		t.Error("reply should be rendered in the viewport")
	}
}

func TestModel_PlaceholderProgression(t *testing.T) {
	m, _ := newTestModel(t, 100)

	placeholder := chat.NewMessage(chat.TypingPlaceholder, chat.Incoming)
	m, cmd := update(t, m, appendMsg{msg: placeholder})
	if cmd == nil {
		t.Error("first pending reply should start the spinner")
	}
	if m.pending != 1 {
		t.Fatalf("pending = %d, want 1", m.pending)
	}

	m, _ = update(t, m, replaceMsg{id: placeholder.ID, text: chat.ThinkingPlaceholder})
	if m.pending != 1 {
		t.Errorf("placeholder swap must keep the reply pending, got %d", m.pending)
	}
	if m.messages[0].Text != chat.ThinkingPlaceholder {
		t.Errorf("placeholder = %q", m.messages[0].Text)
	}

	m, _ = update(t, m, replaceMsg{id: placeholder.ID, text: "done"})
	if m.pending != 0 || m.messages[0].Text != "done" {
		t.Errorf("unexpected state after reply: pending=%d %+v", m.pending, m.messages[0])
	}
}

func TestModel_EmptyInputIsNoop(t *testing.T) {
	for _, value := range []string{"", "   ", "\n \t"} {
		m, _ := newTestModel(t, 100)
		m.textarea.SetValue(value)

		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

		if len(m.messages) != 0 {
			t.Errorf("value %q: expected no messages, got %d", value, len(m.messages))
		}
		if cmd != nil {
			t.Errorf("value %q: expected no command", value)
		}
	}
}

func TestModel_EnterOnNarrowTerminalInsertsNewline(t *testing.T) {
	m, _, box := newBoundModel(t, 60)
	m.textarea.SetValue("first line")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(m.messages) != 0 || len(box) != 0 {
		t.Fatalf("enter should not send on a narrow terminal, got %d messages", len(m.messages))
	}
	if !strings.Contains(m.textarea.Value(), "\n") {
		t.Errorf("expected newline in input, got %q", m.textarea.Value())
	}

	// Ctrl+S always sends
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("ctrl+s should send")
	}
	cmd()
	m = deliver(t, m, box)
	if len(m.messages) != 2 || m.messages[0].Text != "first line" {
		t.Fatalf("unexpected messages after ctrl+s: %+v", m.messages)
	}
}

func TestModel_AltEnterGrowsInput(t *testing.T) {
	m, _ := newTestModel(t, 100)
	m.textarea.SetValue("a")

	for i := 0; i < maxInputHeight+3; i++ {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	}

	if m.textarea.Height() != maxInputHeight {
		t.Errorf("input height = %d, want %d", m.textarea.Height(), maxInputHeight)
	}
	if len(m.messages) != 0 {
		t.Error("alt+enter must not send")
	}

	// Sending resets the input to its initial height
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.textarea.Height() != minInputHeight {
		t.Errorf("input height after send = %d, want %d", m.textarea.Height(), minInputHeight)
	}
}

func TestModel_OverlappingReplies(t *testing.T) {
	m, _ := newTestModel(t, 100)

	first := chat.NewMessage(chat.ThinkingPlaceholder, chat.Incoming)
	second := chat.NewMessage(chat.ThinkingPlaceholder, chat.Incoming)
	m, _ = update(t, m, appendMsg{msg: first})
	m, _ = update(t, m, appendMsg{msg: second})

	// The second reply arrives before the first
	m, _ = update(t, m, replaceMsg{id: second.ID, text: "reply two"})
	m, _ = update(t, m, replaceMsg{id: first.ID, text: "reply one"})

	if m.messages[0].Text != "reply one" || m.messages[1].Text != "reply two" {
		t.Errorf("replies landed in the wrong placeholders: %+v", m.messages)
	}
	if m.pending != 0 {
		t.Errorf("pending = %d, want 0", m.pending)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	tests := []tea.KeyMsg{
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	}

	for _, key := range tests {
		m, _ := newTestModel(t, 100)
		_, cmd := update(t, m, key)
		if cmd == nil {
			t.Fatalf("%s should quit", key.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected QuitMsg", key.String())
		}
	}
}

func TestModel_SlashQuit(t *testing.T) {
	m, _ := newTestModel(t, 100)
	m.textarea.SetValue("/quit")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
	if len(m.messages) != 0 {
		t.Error("/quit should not be shown as a message")
	}
}

func TestRenderStatusBar(t *testing.T) {
	wide, _ := newTestModel(t, 100)
	if !strings.Contains(wide.renderStatusBar(96), "Enter") {
		t.Error("wide status bar should advertise Enter")
	}

	narrow, _ := newTestModel(t, 60)
	if !strings.Contains(narrow.renderStatusBar(56), "Ctrl+S") {
		t.Error("narrow status bar should advertise Ctrl+S")
	}
}
