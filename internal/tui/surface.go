package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/chatbot/internal/chat"
)

// Messages a chat session sends into the program
type (
	appendMsg struct {
		msg chat.Message
	}
	replaceMsg struct {
		id   string
		text string
	}
)

// programSurface forwards session writes to the running program. Writes
// made before bind are dropped.
type programSurface struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// Ensure programSurface implements chat.Surface
var _ chat.Surface = (*programSurface)(nil)

func (s *programSurface) bind(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	s.mu.Unlock()
}

func (s *programSurface) Append(msg chat.Message) {
	s.emit(appendMsg{msg: msg})
}

func (s *programSurface) Replace(id, text string) {
	s.emit(replaceMsg{id: id, text: text})
}

func (s *programSurface) emit(msg tea.Msg) {
	s.mu.RLock()
	send := s.send
	s.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}
