// Package mappingui provides the Bubble Tea mapping browser.
package mappingui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/wbdrift/internal/model"
)

// Service loads and extends the mapping table.
type Service interface {
	FetchMapping(ctx context.Context) (model.Mapping, error)
	AddMapping(ctx context.Context, entries model.Mapping) (model.Mapping, error)
}

const (
	tabTable = iota
	tabOverview
)

const requestTimeout = 10 * time.Second

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

type (
	loadedMsg struct{ mapping model.Mapping }
	savedMsg  struct{ mapping model.Mapping }
	failedMsg struct{ err error }
)

// Model implements the Bubble Tea mapping browser.
type Model struct {
	service Service

	mapping model.Mapping
	errMsg  string
	loading bool

	tabs      []string
	activeTab int
	overview  viewport.Model
	table     table.Model

	width  int
	height int

	filterMode  bool
	filterInput textinput.Model
	filter      string

	addMode   bool
	addInputs []textinput.Model
	addIndex  int
	addError  string
}

// NewModel constructs a mapping browser model.
func NewModel(service Service) *Model {
	m := &Model{
		service: service,
		mapping: model.Mapping{},
		tabs:    []string{"Mapping", "Overview"},
		loading: true,
	}
	m.filterInput = newInput("Filter: ", "char or code")
	m.addInputs = []textinput.Model{
		newInput("Char: ", "你"),
		newInput("Code: ", "wqiy"),
	}
	m.overview = viewport.New(0, 0)
	m.table = buildTable(nil, 0, 1)
	m.table.Focus()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.fetch()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case loadedMsg:
		m.loading = false
		m.errMsg = ""
		m.mapping = msg.mapping
		m.refresh()
		return m, nil
	case savedMsg:
		m.addMode = false
		m.errMsg = ""
		m.mapping = msg.mapping
		m.refresh()
		return m, nil
	case failedMsg:
		m.loading = false
		m.errMsg = msg.err.Error()
		if m.addMode {
			m.addError = m.errMsg
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.addMode {
			return m.updateAdd(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			m.filterMode = true
			m.filterInput.SetValue(m.filter)
			return m, m.filterInput.Focus()
		case "a":
			return m.startAdd()
		case "r":
			m.loading = true
			return m, m.fetch()
		case "g", "home":
			if m.activeTab == tabTable {
				m.table.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabTable {
				m.table.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabTable {
			m.table, cmd = m.table.Update(msg)
		} else {
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.addMode {
		return fitLines(m.renderAddModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Rows returns the table rows currently visible after filtering.
func (m *Model) Rows() []table.Row {
	return m.table.Rows()
}

func newInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) fetch() tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		mapping, err := service.FetchMapping(ctx)
		if err != nil {
			return failedMsg{err: err}
		}
		return loadedMsg{mapping: mapping}
	}
}

func (m *Model) save(entries model.Mapping) tea.Cmd {
	service := m.service
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		merged, err := service.AddMapping(ctx, entries)
		if err != nil {
			return failedMsg{err: err}
		}
		return savedMsg{mapping: merged}
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.table.SetWidth(m.width)
	m.table.SetHeight(maxInt(1, bodyHeight-1))
	m.filterInput.Width = maxInt(10, m.width-lipgloss.Width(m.filterInput.Prompt)-2)
	for i := range m.addInputs {
		promptWidth := lipgloss.Width(m.addInputs[i].Prompt)
		m.addInputs[i].Width = maxInt(10, modalInnerWidth(m.width)-promptWidth)
	}
	m.overview.SetContent(renderOverview(m.mapping, m.width))
}

// refresh rebuilds the table and overview from the current mapping and filter.
func (m *Model) refresh() {
	m.table.SetRows(buildRows(m.mapping, m.filter))
	m.table.GotoTop()
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.mapping, width))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabTable {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.filterMode = false
		m.filterInput.Blur()
		m.filter = strings.TrimSpace(m.filterInput.Value())
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *Model) startAdd() (tea.Model, tea.Cmd) {
	m.addMode = true
	m.addError = ""
	for i := range m.addInputs {
		m.addInputs[i].SetValue("")
	}
	return m, m.setAddIndex(0)
}

func (m *Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.addMode = false
		m.addError = ""
		return m, nil
	case tea.KeyTab:
		return m, m.setAddIndex(m.addIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setAddIndex(m.addIndex - 1)
	case tea.KeyEnter:
		key := strings.TrimSpace(m.addInputs[0].Value())
		code := strings.TrimSpace(m.addInputs[1].Value())
		if key == "" || code == "" {
			m.addError = "Both a character and a code are required."
			return m, nil
		}
		m.addError = ""
		return m, m.save(model.Mapping{key: code})
	}
	var cmd tea.Cmd
	m.addInputs[m.addIndex], cmd = m.addInputs[m.addIndex].Update(msg)
	return m, cmd
}

func (m *Model) setAddIndex(idx int) tea.Cmd {
	count := len(m.addInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.addIndex = idx
	var cmd tea.Cmd
	for i := range m.addInputs {
		if i == idx {
			cmd = m.addInputs[i].Focus()
		} else {
			m.addInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	filter := m.filter
	if filter == "" {
		filter = "none"
	}
	summary := fmt.Sprintf("Entries: %d  shown: %d  filter: %s", len(m.mapping), len(m.table.Rows()), filter)
	if m.loading {
		summary += "  (loading)"
	}
	return tabs + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderBody() string {
	if m.filterMode {
		return m.filterInput.View() + "\n" + headerStyle.Render("Matches characters and codes containing the text.")
	}
	if m.activeTab == tabOverview {
		return m.overview.View()
	}
	switch {
	case len(m.mapping) == 0:
		return "Mapping is empty. Press a to add an entry."
	case len(m.table.Rows()) == 0:
		return "No entries match the filter."
	}
	return tableMutedStyle.Render(m.table.View())
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/g/G  Filter: /  Add: a  Reload: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderAddModal() string {
	body := []string{cardValueStyle.Render("Add Mapping Entry")}
	for _, input := range m.addInputs {
		body = append(body, input.View())
	}
	body = append(body, headerStyle.Render("tab: next field  enter: save  esc: cancel"))
	if m.addError != "" {
		body = append(body, errorStyle.Render(m.addError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func buildTable(rows []table.Row, width, height int) table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Char", Width: 6},
			{Title: "Code", Width: 12},
		}),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// buildRows returns key/code rows sorted by key, keeping entries whose key or
// code contains filter.
func buildRows(mapping model.Mapping, filter string) []table.Row {
	rows := make([]table.Row, 0, len(mapping))
	for _, key := range mapping.Keys() {
		code := mapping[key]
		if filter != "" && !strings.Contains(key, filter) && !strings.Contains(code, filter) {
			continue
		}
		rows = append(rows, table.Row{key, code})
	}
	return rows
}

func renderOverview(mapping model.Mapping, width int) string {
	if len(mapping) == 0 {
		return "Mapping is empty."
	}
	lengths := map[int]int{}
	total := 0
	longest := ""
	for _, key := range mapping.Keys() {
		code := mapping[key]
		n := utf8.RuneCountInString(code)
		lengths[n]++
		total += n
		if n > utf8.RuneCountInString(longest) {
			longest = code
		}
	}
	cards := []string{
		metricCard("Entries", fmt.Sprintf("%d", len(mapping))),
		metricCard("Avg code", fmt.Sprintf("%.1f", float64(total)/float64(len(mapping)))),
		metricCard("Longest", longest),
	}
	var summary string
	if width < 60 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	sizes := make([]int, 0, len(lengths))
	for n := range lengths {
		sizes = append(sizes, n)
	}
	sort.Ints(sizes)
	lines := []string{headerStyle.Render("Codes by length")}
	for _, n := range sizes {
		lines = append(lines, fmt.Sprintf("%2d letters: %d", n, lengths[n]))
	}
	return summary + "\n\n" + strings.Join(lines, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
