package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdf-rag/internal/chat"
	"pdf-rag/internal/chromemdb"
	"pdf-rag/internal/models"
)

const (
	userEmoji     = "👤"
	botEmoji      = "🤖"
	defaultFolder = "test/"
)

// Port is the TUI-facing subset of the RAG pipeline
type Port interface {
	BuildIndex(ctx context.Context, folder string) (*chromemdb.Index, error)
	Converse(ctx context.Context, idx *chromemdb.Index, history chat.Log, query string) (chat.Log, string, error)
}

type focus int

const (
	focusFolder focus = iota
	focusQuery
)

type indexBuiltMsg struct {
	folder string
	index  *chromemdb.Index
	err    error
}

type answerMsg struct {
	history chat.Log
	err     error
}

// Model is the Bubble Tea model for the chat application
type Model struct {
	ctx         context.Context
	port        Port
	folderInput textinput.Model
	queryInput  textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model
	index       *chromemdb.Index
	history     chat.Log
	status      string
	focus       focus
	busy        bool
	ready       bool
}

// New creates a new TUI model instance
func New(ctx context.Context, port Port) Model {
	fi := textinput.New()
	fi.Prompt = "Folder > "
	fi.Placeholder = "Folder containing your PDF files"
	fi.SetValue(defaultFolder)
	fi.Focus()

	qi := textinput.New()
	qi.Prompt = "Ask > "
	qi.Placeholder = "Ask a question about your PDFs"
	qi.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:         ctx,
		port:        port,
		folderInput: fi,
		queryInput:  qi,
		viewport:    viewport.New(0, 0),
		spinner:     sp,
		status:      "Enter a folder path and press Enter to build the index.",
	}
}

// History returns the conversation so far
func (m Model) History() chat.Log { return m.history }

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := logBoxStyle.GetFrameSize()
		// header, two inputs, status and a spacer
		vh := msg.Height - 5 - fh
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, vh)
		m.viewport.SetContent(m.renderLog())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, tea.Quit
		case "tab", "shift+tab":
			return m.toggleFocus(), nil
		case "enter":
			if m.busy {
				return m, nil
			}
			if m.focus == focusFolder {
				return m.startBuild()
			}
			return m.startQuery()
		}

	case indexBuiltMsg:
		m.busy = false
		if msg.err != nil {
			m.index = nil
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.index = msg.index
		m.status = fmt.Sprintf("Index has been built from %s: %d chunks.", msg.folder, msg.index.Len())
		if m.focus == focusFolder {
			m = m.toggleFocus()
		}
		return m, nil

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.history = msg.history
		m.queryInput.Reset()
		m.status = "Ask another question, or Tab to change folder."
		m.viewport.SetContent(m.renderLog())
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.focus == focusFolder {
		m.folderInput, cmd = m.folderInput.Update(msg)
	} else {
		m.queryInput, cmd = m.queryInput.Update(msg)
	}
	return m, cmd
}

func (m Model) toggleFocus() Model {
	if m.focus == focusFolder {
		m.focus = focusQuery
		m.folderInput.Blur()
		m.queryInput.Focus()
	} else {
		m.focus = focusFolder
		m.queryInput.Blur()
		m.folderInput.Focus()
	}
	return m
}

func (m Model) startBuild() (tea.Model, tea.Cmd) {
	folder := strings.TrimSpace(m.folderInput.Value())
	if folder == "" {
		m.status = "Please enter a folder path."
		return m, nil
	}
	m.busy = true
	m.status = "Building the index from PDF files in the folder..."

	ctx, port := m.ctx, m.port
	build := func() tea.Msg {
		idx, err := port.BuildIndex(ctx, folder)
		return indexBuiltMsg{folder: folder, index: idx, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, build)
}

func (m Model) startQuery() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.queryInput.Value())
	if query == "" {
		return m, nil
	}
	if m.index == nil {
		m.status = "Build the index first."
		return m, nil
	}
	m.busy = true
	m.status = "Searching for the best match and querying the LLM..."

	ctx, port, idx, history := m.ctx, m.port, m.index, m.history
	ask := func() tea.Msg {
		next, _, err := port.Converse(ctx, idx, history, query)
		return answerMsg{history: next, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, ask)
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Chat with your PDFs")
	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" +
		logBoxStyle.Render(m.viewport.View()) + "\n" +
		m.folderInput.View() + "\n" +
		m.queryInput.View() + "\n" +
		status
}

func (m Model) renderLog() string {
	turns := m.history.Turns()
	if len(turns) == 0 {
		return "No conversation yet."
	}
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if turn.Role == models.RoleUser {
			b.WriteString(userEmoji + " " + userStyle.Render(turn.Text))
		} else {
			b.WriteString(botEmoji + " " + turn.Text)
		}
	}
	return lipgloss.NewStyle().Width(m.viewport.Width).Render(b.String())
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	logBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle   = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
