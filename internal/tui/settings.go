package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wbdrift/internal/charset"
	"github.com/verte-zerg/wbdrift/internal/model"
)

type mappingRow struct {
	key  textinput.Model
	code textinput.Model
}

func (m *Model) initInputs() {
	m.charsInput = newInput("Characters: ", charset.Default)
	m.charsInput.SetValue(m.config.Characters)
	m.resetRows()
	m.setFocus(0)
}

func newInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func newMappingRow() mappingRow {
	row := mappingRow{
		key:  newInput("Char: ", "你"),
		code: newInput("Code: ", "wqiy"),
	}
	row.key.Width = 6
	row.code.Width = 12
	return row
}

func (m *Model) resetRows() {
	m.rows = []mappingRow{newMappingRow()}
	if m.focus > 0 {
		m.setFocus(1)
	}
}

func (m *Model) focusCount() int {
	return 1 + 2*len(m.rows)
}

// setFocus focuses input idx: 0 is the character set, then key/code pairs.
func (m *Model) setFocus(idx int) tea.Cmd {
	count := m.focusCount()
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.focus = idx
	m.charsInput.Blur()
	for i := range m.rows {
		m.rows[i].key.Blur()
		m.rows[i].code.Blur()
	}
	if idx == 0 {
		return m.charsInput.Focus()
	}
	row := &m.rows[(idx-1)/2]
	if (idx-1)%2 == 0 {
		return row.key.Focus()
	}
	return row.code.Focus()
}

func (m *Model) focusedInput() *textinput.Model {
	if m.focus == 0 {
		return &m.charsInput
	}
	row := &m.rows[(m.focus-1)/2]
	if (m.focus-1)%2 == 0 {
		return &row.key
	}
	return &row.code
}

func (m *Model) updateSettings(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		return m.startSession()
	case tea.KeyTab, tea.KeyDown:
		return m.setFocus(m.focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m.setFocus(m.focus - 1)
	case tea.KeyCtrlT:
		m.toggleMode()
		return nil
	case tea.KeyCtrlN:
		m.rows = append(m.rows, newMappingRow())
		return m.setFocus(m.focusCount() - 2)
	case tea.KeyCtrlD:
		return m.removeFocusedRow()
	case tea.KeyCtrlS:
		entries := m.collectRows()
		if len(entries) == 0 {
			m.setStatus("Enter at least one character and code.", true)
			return nil
		}
		m.clearStatus()
		return m.saveMapping(entries)
	case tea.KeyCtrlW:
		text := strings.TrimSpace(m.charsInput.Value())
		if text == "" {
			m.setStatus("Enter the characters to practice.", true)
			return nil
		}
		m.clearStatus()
		return m.saveCharacters(text)
	case tea.KeyCtrlR:
		return m.fetchMapping()
	}
	input := m.focusedInput()
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return cmd
}

func (m *Model) toggleMode() {
	if m.mode == model.ModeMapping {
		m.mode = model.ModeChars
		return
	}
	m.mode = model.ModeMapping
}

func (m *Model) removeFocusedRow() tea.Cmd {
	if m.focus == 0 {
		return nil
	}
	idx := (m.focus - 1) / 2
	if len(m.rows) == 1 {
		m.rows[0] = newMappingRow()
		return m.setFocus(1)
	}
	m.rows = append(m.rows[:idx], m.rows[idx+1:]...)
	return m.setFocus(maxInt(1, m.focus-2))
}

// collectRows returns the filled-in rows. Rows missing a key or a code are skipped.
func (m *Model) collectRows() model.Mapping {
	entries := model.Mapping{}
	for _, row := range m.rows {
		key := strings.TrimSpace(row.key.Value())
		code := strings.TrimSpace(row.code.Value())
		if key == "" || code == "" {
			continue
		}
		entries[key] = code
	}
	return entries
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	promptWidth := lipgloss.Width(m.charsInput.Prompt)
	m.charsInput.Width = maxInt(10, m.width-promptWidth-2)
	playWidth, playHeight := m.playArea()
	// Room for the widest (double-width) target.
	m.engine.SetBounds(float64(playWidth-2), float64(playHeight-1))
}

func (m *Model) viewSettings() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("wbdrift"))
	b.WriteString("\n\n")
	b.WriteString(m.renderModeLine())
	b.WriteString("\n\n")
	b.WriteString(m.charsInput.View())
	b.WriteString("\n")
	b.WriteString(m.renderPreview())
	b.WriteString("\n\n")
	b.WriteString(footerStyle.Render("Add to mapping"))
	b.WriteString("\n")
	for _, row := range m.rows {
		b.WriteString(row.key.View())
		b.WriteString("  ")
		b.WriteString(row.code.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if status := m.renderStatus(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render(settingsHelp))
	return b.String()
}

const settingsHelp = "enter start · tab focus · ctrl+t mode · ctrl+n/ctrl+d add/remove row · ctrl+s save mapping · ctrl+w save characters · ctrl+r reload · ctrl+c quit"

func (m *Model) renderModeLine() string {
	chars := "( ) characters"
	wb := fmt.Sprintf("( ) mapping (%d entries)", len(m.mapping))
	if m.mode == model.ModeMapping {
		wb = "(•)" + wb[3:]
	} else {
		chars = "(•)" + chars[3:]
	}
	return "Mode: " + chars + "  " + wb
}

func (m *Model) renderPreview() string {
	runes := buildStyledChars(charset.Resolve(m.charsInput.Value()), m.mapping)
	width := m.width - 2
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	return wrapStyledRunes(runes, width)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
