package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/diogo/chatbot/internal/chat"
	"github.com/diogo/chatbot/internal/config"
	"github.com/diogo/chatbot/internal/logging"
	"github.com/diogo/chatbot/internal/render"
)

// Input control sizing, in text lines
const (
	minInputHeight = 2
	maxInputHeight = 6
)

// Options configures the chat model
type Options struct {
	Responder   chat.Responder
	BotName     string
	TypingDelay time.Duration
	// WideWidth is the terminal width from which Enter sends. Below it Enter
	// inserts a newline and Ctrl+S sends.
	WideWidth int
	Markdown  config.MarkdownConfig
	Logger    *zap.Logger
}

// Model represents the TUI state
type Model struct {
	// session runs submissions and reports back through surface
	session   *chat.Session
	surface   *programSurface
	botName   string
	wideWidth int
	markdown  config.MarkdownConfig
	logger    *zap.Logger

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	messages []chat.Message
	pending  int // replies not yet resolved
	ready    bool

	// Dimensions
	width  int
	height int
}

// NewModel creates a new chat TUI model
func NewModel(opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(minInputHeight)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	botName := opts.BotName
	if botName == "" {
		botName = "ChatBot"
	}

	logger := logging.OrNop(opts.Logger)
	surface := &programSurface{}
	session := chat.NewSession(opts.Responder, surface,
		chat.WithTypingDelay(opts.TypingDelay),
		chat.WithLogger(logger),
	)

	return Model{
		session:   session,
		surface:   surface,
		botName:   botName,
		wideWidth: opts.WideWidth,
		markdown:  opts.Markdown,
		logger:    logger,
		textarea:  ta,
		spinner:   s,
		messages:  []chat.Message{},
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+s":
			return m.submit()

		case "enter":
			if m.isWide() {
				return m.submit()
			}

		case "alt+enter":
			m.textarea.InsertString("\n")
			m.autoSize()
			return m, nil
		}

	case appendMsg:
		m.messages = append(m.messages, msg.msg)
		if msg.msg.Direction == chat.Incoming {
			m.pending++
			if m.pending == 1 {
				cmd = m.spinner.Tick
			}
		}
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, cmd

	case replaceMsg:
		m.replace(msg.id, msg.text)
		if !isPlaceholder(msg.text) && m.pending > 0 {
			m.pending--
		}
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.pending > 0 {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.autoSize()
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit takes the input text, shows it and schedules the reply
func (m Model) submit() (tea.Model, tea.Cmd) {
	text, ok := chat.Take(&m.textarea)
	if !ok {
		return m, nil
	}

	if text == "/exit" || text == "/quit" {
		return m, tea.Quit
	}

	m.autoSize()
	m.logger.Debug("message submitted", zap.Int("length", len(text)))

	return m, m.send(text)
}

// send hands text to the session off the update loop. The session writes
// back through the surface, which must not be called from inside Update.
func (m Model) send(text string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		session.SubmitText(text)
		return nil
	}
}

// replace updates the text of the message with id
func (m *Model) replace(id, text string) {
	for i := range m.messages {
		if m.messages[i].ID == id {
			m.messages[i].Text = text
			return
		}
	}
}

func (m Model) isWide() bool {
	return m.width >= m.wideWidth
}

// autoSize grows the input with its content, bounded to maxInputHeight
func (m *Model) autoSize() {
	lines := m.textarea.LineCount()
	if lines < minInputHeight {
		lines = minInputHeight
	}
	if lines > maxInputHeight {
		lines = maxInputHeight
	}
	if lines != m.textarea.Height() {
		m.textarea.SetHeight(lines)
		m.layout()
	}
}

// layout sizes the viewport and input to the window
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	headerHeight := 3 // Header panel with border
	inputHeight := m.textarea.Height() + 3
	statusHeight := 1
	padding := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 3 {
		vpHeight = 3
	}

	contentWidth := m.width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}
	opts := render.OptionsFromConfig(m.markdown, bubbleWidth-4)

	for i, msg := range m.messages {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.Direction == chat.Outgoing {
			label := userLabelStyle.Render("You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Text)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := assistantLabelStyle.Render(m.botName)
			var body string
			if isPlaceholder(msg.Text) {
				body = placeholderStyle.Render(msg.Text)
			} else {
				body = render.Reply(msg.Text, opts)
			}
			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(body)
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

func isPlaceholder(text string) bool {
	return text == chat.TypingPlaceholder || text == chat.ThinkingPlaceholder
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ "+m.botName),
		hintStyle.Render("  •  "),
		subtitleStyle.Render("ask me anything"),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages
	var messagesContent string
	if len(m.messages) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	// Input
	inputContent := lipgloss.JoinVertical(
		lipgloss.Left,
		inputLabelStyle.Render("You"),
		m.textarea.View(),
	)
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render("Hi, I'm "+m.botName),
		"",
		welcomeStyle.Width(width).Render("Say hello, try 12 x 4, or ask for some advice"),
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	type shortcut struct {
		key  string
		desc string
	}

	shortcuts := []shortcut{{"Ctrl+S", "Send"}}
	if m.isWide() {
		shortcuts = []shortcut{{"Enter", "Send"}, {"Alt+Enter", "Newline"}}
	}
	shortcuts = append(shortcuts, shortcut{"Esc", "Quit"}, shortcut{"↑↓", "Scroll"})

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	bar := strings.Join(items, "  │  ")
	if m.pending > 0 {
		bar = m.spinner.View() + loadingStyle.Render(" thinking") + "  │  " + bar
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// Run starts the chat TUI. Pending replies are cut short on exit.
func Run(opts Options) error {
	m := NewModel(opts)
	defer m.session.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	m.surface.bind(p.Send)

	_, err := p.Run()
	return err
}
