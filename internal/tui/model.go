// Package tui provides the Bubble Tea drift typing interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wbdrift/internal/charset"
	"github.com/verte-zerg/wbdrift/internal/game"
	"github.com/verte-zerg/wbdrift/internal/model"
)

// MappingService is the subset of the mapping API used by the UI.
type MappingService interface {
	FetchMapping(ctx context.Context) (model.Mapping, error)
	AddMapping(ctx context.Context, entries model.Mapping) (model.Mapping, error)
	AddCharacters(ctx context.Context, text string) error
}

const (
	defaultFPS      = 30
	animationFrames = 12
	requestTimeout  = 10 * time.Second
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	targetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mappedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FB77E"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
)

type (
	mappingLoadedMsg struct{ mapping model.Mapping }
	mappingSavedMsg  struct{ mapping model.Mapping }
	charsSavedMsg    struct{}
	requestErrMsg    struct {
		action string
		err    error
	}
	frameMsg struct {
		loop int
		at   time.Time
	}
)

// Model implements the Bubble Tea game UI.
type Model struct {
	config  model.PlayConfig
	service MappingService
	engine  *game.Engine
	now     func() time.Time

	width  int
	height int

	mapping model.Mapping
	mode    model.Mode

	charsInput textinput.Model
	rows       []mappingRow
	focus      int

	status    string
	statusErr bool

	loop      int
	animFrame int
	speed     int
	accuracy  int
	shown     int

	summaries []model.SessionSummary
}

// NewModel constructs a game UI model.
func NewModel(cfg model.PlayConfig, service MappingService, engine *game.Engine) *Model {
	if cfg.Mode == "" {
		cfg.Mode = model.ModeChars
	}
	if cfg.FPS <= 0 {
		cfg.FPS = defaultFPS
	}
	m := &Model{
		config:  cfg,
		service: service,
		engine:  engine,
		now:     time.Now,
		mapping: model.Mapping{},
		mode:    cfg.Mode,
	}
	m.initInputs()
	return m
}

// Summaries returns the sessions finished while the program ran.
func (m *Model) Summaries() []model.SessionSummary {
	return m.summaries
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetchMapping())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case mappingLoadedMsg:
		m.mapping = msg.mapping
		m.engine.SetMapping(msg.mapping)
		return m, nil
	case mappingSavedMsg:
		m.resetRows()
		m.setStatus(fmt.Sprintf("Mapping saved (%d entries).", len(msg.mapping)), false)
		return m, m.fetchMapping()
	case charsSavedMsg:
		m.setStatus("Characters sent to the server.", false)
		return m, nil
	case requestErrMsg:
		logErrf("%s failed: %v\n", msg.action, msg.err)
		m.setStatus(fmt.Sprintf("%s failed: %v", msg.action, msg.err), true)
		return m, nil
	case frameMsg:
		return m, m.handleFrame(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if m.engine.Running() {
				m.endSession()
			}
			return m, tea.Quit
		}
		if m.engine.Running() {
			return m, m.updatePlay(msg)
		}
		return m, m.updateSettings(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.engine.Running() {
		return m.viewPlay()
	}
	return m.viewSettings()
}

func (m *Model) updatePlay(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.endSession()
		return nil
	case tea.KeyCtrlO:
		// Not ctrl+h: many terminals send it for backspace.
		m.engine.ToggleHint()
		return nil
	case tea.KeyCtrlS:
		m.engine.Skip()
		m.animFrame = 0
		m.refreshStats()
		return nil
	case tea.KeySpace:
		m.handleInput(" ")
		return nil
	case tea.KeyRunes:
		m.handleInput(string(msg.Runes))
		return nil
	}
	return nil
}

func (m *Model) handleInput(text string) {
	if m.engine.Input(text) == game.Hit {
		m.animFrame = 0
	}
}

func (m *Model) startSession() tea.Cmd {
	settings := game.Settings{
		Mode:       m.mode,
		Characters: charset.Resolve(m.charsInput.Value()),
		Mapping:    m.mapping,
	}
	if err := m.engine.Start(settings, m.now()); err != nil {
		m.setStatus(fmt.Sprintf("Cannot start: %v", err), true)
		return nil
	}
	m.clearStatus()
	m.updateLayout()
	m.animFrame = 0
	m.loop++
	m.refreshStats()
	return m.frameTick()
}

func (m *Model) endSession() {
	summary, err := m.engine.End(m.now())
	if err != nil {
		return
	}
	m.summaries = append(m.summaries, summary)
	m.setStatus(fmt.Sprintf("Game over! Speed %d chars/min · Accuracy %d%%", summary.Speed, summary.Accuracy), false)
}

// handleFrame advances drift and exit animations. The loop ends by not
// scheduling another tick once the session is over or restarted.
func (m *Model) handleFrame(msg frameMsg) tea.Cmd {
	if !m.engine.Running() || msg.loop != m.loop {
		return nil
	}
	m.engine.Step()
	if m.engine.Exiting() != "" {
		m.animFrame++
		if m.animFrame >= animationFrames {
			m.animFrame = 0
			m.engine.AnimationDone()
			m.refreshStats()
		}
	}
	return m.frameTick()
}

func (m *Model) frameTick() tea.Cmd {
	loop := m.loop
	interval := time.Second / time.Duration(m.config.FPS)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg{loop: loop, at: t}
	})
}

// refreshStats recomputes the displayed stats; called whenever a new target is shown.
func (m *Model) refreshStats() {
	m.speed, m.accuracy = m.engine.Stats(m.now())
	m.shown = m.engine.Attempts()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render(m.status)
	}
	return infoStyle.Render(m.status)
}

func (m *Model) fetchMapping() tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		mapping, err := service.FetchMapping(ctx)
		if err != nil {
			return requestErrMsg{action: "Loading mapping", err: err}
		}
		return mappingLoadedMsg{mapping: mapping}
	}
}

func (m *Model) saveMapping(entries model.Mapping) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		merged, err := service.AddMapping(ctx, entries)
		if err != nil {
			return requestErrMsg{action: "Saving mapping", err: err}
		}
		return mappingSavedMsg{mapping: merged}
	}
}

func (m *Model) saveCharacters(text string) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := service.AddCharacters(ctx, text); err != nil {
			return requestErrMsg{action: "Saving characters", err: err}
		}
		return charsSavedMsg{}
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
