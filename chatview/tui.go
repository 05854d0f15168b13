package main

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/satriahrh/cocoa-fruit/studychat/domain"
	"github.com/satriahrh/cocoa-fruit/studychat/usecase"
)

var (
	userLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	botLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))
)

// changedMsg tells the UI that the conversation store changed.
type changedMsg struct{}

type chatModel struct {
	ctx      context.Context
	store    *usecase.ConversationStore
	input    textinput.Model
	viewport viewport.Model
	width    int
	height   int
}

func newChatModel(ctx context.Context, store *usecase.ConversationStore) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Write a message..."
	ti.CharLimit = 2000
	ti.Focus()

	m := chatModel{
		ctx:      ctx,
		store:    store,
		input:    ti,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-3)
		m.input.Width = max(10, msg.Width-4)
		m.refresh()

	case changedMsg:
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := m.input.Value()
			if strings.TrimSpace(text) == "" || m.store.Pending() {
				return m, nil
			}
			m.input.Reset()
			return m, submit(m.ctx, m.store, text)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m chatModel) View() string {
	status := ""
	if m.store.Pending() {
		status = dimStyle.Render("waiting for a reply...")
	}
	return m.viewport.View() + "\n" + status + "\n" + m.input.View()
}

// refresh re-renders the history into the viewport and scrolls to the end.
func (m *chatModel) refresh() {
	bubble := lipgloss.NewStyle().Width(max(10, m.width-6))

	var b strings.Builder
	for _, msg := range m.store.History() {
		if msg.Role == domain.UserRole {
			b.WriteString(userLabel.Render("you"))
		} else {
			b.WriteString(botLabel.Render("bot"))
		}
		b.WriteString("\n")
		b.WriteString(bubble.Render(msg.Content))
		b.WriteString("\n\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// submit runs the exchange off the UI loop; the store's observer redraws
// once the reply is in.
func submit(ctx context.Context, store *usecase.ConversationStore, text string) tea.Cmd {
	return func() tea.Msg {
		store.Submit(ctx, text)
		return changedMsg{}
	}
}

func runTUI(ctx context.Context, exchanger domain.Exchanger, greeting string) error {
	var program *tea.Program
	store := usecase.NewConversationStore(exchanger, greeting, usecase.WithObserver(func() {
		if program != nil {
			program.Send(changedMsg{})
		}
	}))

	program = tea.NewProgram(newChatModel(ctx, store), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
