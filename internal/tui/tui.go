// Package tui implements the interactive terminal client for chipjack.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/jykim/chipjack/internal/protocol"
)

// Backend is the slice of the websocket client the TUI drives.
type Backend interface {
	CreateRoom(stake int64) (string, error)
	JoinRoom(roomID string) (string, error)
	Escape() (string, error)
	ToggleReady() (string, error)
	Start() (string, error)
	Hit() (*protocol.CardDealt, error)
	Fix() (string, error)
	ListRooms() ([]string, error)
	Hand() (*protocol.HandState, error)
	Balance() (int64, error)
	Results() ([]string, error)
	Mint(amount int64) (int64, error)
	Exchange(amount int64) (int64, error)
}

// resultMsg carries the outcome of a command back into Update.
type resultMsg struct {
	lines   []string
	balance int64 // refreshed balance, -1 when unchanged
	isErr   bool
}

// pushMsg carries an unsolicited server message.
type pushMsg struct {
	msg *protocol.Message
}

// Model is the Bubble Tea model for the chipjack client.
type Model struct {
	backend Backend
	account string
	logger  zerolog.Logger

	logViewport viewport.Model
	input       textinput.Model

	log     []string
	balance int64
	pushes  chan *protocol.Message

	width       int
	height      int
	initialized bool
	quitting    bool
}

// NewModel creates the client model. The pushes channel should be fed
// by the client's push handler.
func NewModel(backend Backend, account string, balance int64, pushes chan *protocol.Message, logger zerolog.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Enter a command (help for a list)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		backend:     backend,
		account:     account,
		balance:     balance,
		logger:      logger.With().Str("component", "tui").Logger(),
		logViewport: vp,
		input:       ti,
		pushes:      pushes,
		log:         []string{"Welcome to chipjack. Type 'help' for commands."},
	}
}

// Init starts the cursor blink and the push listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenPushes())
}

func (m *Model) listenPushes() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.pushes
		if !ok {
			return nil
		}
		return pushMsg{msg: msg}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case resultMsg:
		for _, line := range msg.lines {
			if msg.isErr {
				m.appendLog(ErrorStyle.Render(line))
			} else {
				m.appendLog(line)
			}
		}
		if msg.balance >= 0 {
			m.balance = msg.balance
		}

	case pushMsg:
		m.handlePush(msg.msg)
		cmds = append(cmds, m.listenPushes())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "quit" || line == "exit" {
				m.quitting = true
				return m, tea.Sequence(tea.ClearScreen, tea.Quit)
			}
			if line != "" {
				m.appendLog(InfoStyle.Render("> " + line))
				cmds = append(cmds, m.dispatch(line))
			}
		case "pgup":
			m.logViewport.HalfPageUp()
		case "pgdown":
			m.logViewport.HalfPageDown()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the log pane over the input pane.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := HeaderStyle.Render(fmt.Sprintf(" chipjack · %s · %d chips ", m.account, m.balance))

	inputContent := m.input.View() + "\n" +
		InfoStyle.Render("Enter to submit · PgUp/PgDn to scroll · Ctrl+C to quit")
	inputHeight := lipgloss.Height(inputContent)

	inputWidth := m.width - 2
	if inputWidth < 1 {
		inputWidth = 1
	}
	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(inputWidth)
	inputPane := inputStyle.Render(inputContent)

	logWidth := m.width - 2
	logHeight := m.height - inputHeight - lipgloss.Height(header) - 4
	if logWidth < 1 {
		logWidth = 1
	}
	if logHeight < 1 {
		logHeight = 1
	}
	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight
	m.logViewport.SetContent(strings.Join(m.log, "\n"))

	if !m.initialized && logWidth > 1 && logHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(logHeight)
	logPane := logStyle.Render(m.logViewport.View())

	return lipgloss.JoinVertical(lipgloss.Top, header, logPane, inputPane)
}

func (m *Model) appendLog(entry string) {
	m.log = append(m.log, entry)
	m.logViewport.SetContent(strings.Join(m.log, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

func (m *Model) handlePush(msg *protocol.Message) {
	if msg.Type != protocol.TypeRoundSettled {
		m.logger.Debug().Str("type", msg.Type.String()).Msg("ignoring push")
		return
	}
	var s protocol.RoundSettled
	if err := msg.Decode(&s); err != nil {
		m.logger.Debug().Err(err).Msg("bad settlement push")
		return
	}
	m.balance = s.Balance
	m.appendLog(WarningStyle.Render(s.Record))
	if s.Banned {
		m.appendLog(ErrorStyle.Render(fmt.Sprintf("%s was banned from the room.", s.Loser)))
	}
	if s.RoomClosed {
		m.appendLog(InfoStyle.Render("The room was closed."))
	}
}

// dispatch parses a command line and returns the command that runs it.
func (m *Model) dispatch(line string) tea.Cmd {
	parts := strings.Fields(line)
	cmd, args := parts[0], parts[1:]

	return func() tea.Msg {
		switch cmd {
		case "help":
			return resultMsg{balance: -1, lines: []string{
				"Commands:",
				"  mint <amount>      buy chips",
				"  exchange <amount>  cash chips out",
				"  balance            show chip balance",
				"  create <stake>     open a room with a stake",
				"  join <room>        join an open room",
				"  escape             leave the current room",
				"  ready              toggle the ready flag",
				"  start              begin the round (owner only)",
				"  hit                draw a card",
				"  fix                stop drawing",
				"  rooms              list open rooms",
				"  hand               show your hand",
				"  results            show the settlement log",
				"  quit               exit",
			}}
		case "mint":
			amount, err := parseAmount(args)
			if err != nil {
				return errResult(err)
			}
			balance, err := m.backend.Mint(amount)
			if err != nil {
				return errResult(err)
			}
			return resultMsg{balance: balance, lines: []string{
				SuccessStyle.Render(fmt.Sprintf("Minted %d chips. Balance: %d", amount, balance)),
			}}
		case "exchange":
			amount, err := parseAmount(args)
			if err != nil {
				return errResult(err)
			}
			balance, err := m.backend.Exchange(amount)
			if err != nil {
				return errResult(err)
			}
			return resultMsg{balance: balance, lines: []string{
				SuccessStyle.Render(fmt.Sprintf("Exchanged %d chips. Balance: %d", amount, balance)),
			}}
		case "balance":
			balance, err := m.backend.Balance()
			if err != nil {
				return errResult(err)
			}
			return resultMsg{balance: balance, lines: []string{
				fmt.Sprintf("Balance: %d chips", balance),
			}}
		case "create":
			amount, err := parseAmount(args)
			if err != nil {
				return errResult(err)
			}
			detail, err := m.backend.CreateRoom(amount)
			if err != nil {
				return errResult(err)
			}
			return okResult(detail)
		case "join":
			if len(args) != 1 {
				return errResult(fmt.Errorf("usage: join <room>"))
			}
			detail, err := m.backend.JoinRoom(args[0])
			if err != nil {
				return errResult(err)
			}
			return okResult(detail)
		case "escape":
			detail, err := m.backend.Escape()
			if err != nil {
				return errResult(err)
			}
			return okResult(detail)
		case "ready":
			detail, err := m.backend.ToggleReady()
			if err != nil {
				return errResult(err)
			}
			return okResult(detail)
		case "start":
			detail, err := m.backend.Start()
			if err != nil {
				return errResult(err)
			}
			return okResult(detail)
		case "hit":
			dealt, err := m.backend.Hit()
			if err != nil {
				return errResult(err)
			}
			line := HandStyle.Render(fmt.Sprintf("Drew %s. Hand value: %d", dealt.Card, dealt.Value))
			lines := []string{line}
			if dealt.Bust {
				lines = append(lines, ErrorStyle.Render("Bust!"))
			} else if dealt.Fixed {
				lines = append(lines, WarningStyle.Render("Hand is fixed."))
			}
			return resultMsg{balance: -1, lines: lines}
		case "fix":
			detail, err := m.backend.Fix()
			if err != nil {
				return errResult(err)
			}
			return okResult(detail)
		case "rooms":
			rooms, err := m.backend.ListRooms()
			if err != nil {
				return errResult(err)
			}
			if len(rooms) == 0 {
				return resultMsg{balance: -1, lines: []string{"No open rooms."}}
			}
			return resultMsg{balance: -1, lines: rooms}
		case "hand":
			h, err := m.backend.Hand()
			if err != nil {
				return errResult(err)
			}
			status := ""
			if h.Fixed {
				status = " (fixed)"
			}
			return resultMsg{balance: -1, lines: []string{
				HandStyle.Render(fmt.Sprintf("%s (%d)%s", strings.Join(h.Cards, " "), h.Value, status)),
			}}
		case "results":
			results, err := m.backend.Results()
			if err != nil {
				return errResult(err)
			}
			if len(results) == 0 {
				return resultMsg{balance: -1, lines: []string{"No results yet."}}
			}
			return resultMsg{balance: -1, lines: results}
		default:
			return errResult(fmt.Errorf("unknown command %q, try 'help'", cmd))
		}
	}
}

func parseAmount(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected a single amount")
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", args[0])
	}
	return amount, nil
}

func errResult(err error) resultMsg {
	return resultMsg{balance: -1, isErr: true, lines: []string{err.Error()}}
}

func okResult(detail string) resultMsg {
	if detail == "" {
		detail = "OK"
	}
	return resultMsg{balance: -1, lines: []string{SuccessStyle.Render(detail)}}
}
