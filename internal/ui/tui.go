// Package ui provides the terminal task board.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/tarefo/tarefo/internal/due"
	"github.com/tarefo/tarefo/internal/model"
	"github.com/tarefo/tarefo/internal/store"
)

// RunBoard starts the task board over the given stores.
func RunBoard(ctx context.Context, tasks *store.TaskStore, projects *store.ProjectStore) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	m := newBoardModel(tasks, projects)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

var boardColumns = []model.Status{model.StatusTodo, model.StatusInProgress, model.StatusDone}

type keyMap struct {
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	MoveUp  key.Binding
	MoveDn  key.Binding
	Advance key.Binding
	Project key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		MoveUp:  key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move task up")),
		MoveDn:  key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move task down")),
		Advance: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "advance status")),
		Project: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "cycle project filter")),
		Refresh: key.NewBinding(key.WithKeys("r", "f5"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Advance, k.MoveUp, k.MoveDn, k.Project, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.MoveUp, k.MoveDn, k.Advance, k.Project},
		{k.Refresh, k.Help, k.Quit},
	}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	columnStyle   = lipgloss.NewStyle().Padding(0, 1).Width(32)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dueTodayStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dueSoonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type boardModel struct {
	tasks    *store.TaskStore
	projects *store.ProjectStore

	keys keyMap
	help help.Model

	columns [3][]model.Task
	col     int
	row     [3]int

	// projectFilter indexes projectList; -1 means all tasks.
	projectFilter int
	projectList   []model.Project

	tickInterval time.Duration
	lastErr      error
	width        int
}

type tickMsg time.Time

func newBoardModel(tasks *store.TaskStore, projects *store.ProjectStore) *boardModel {
	m := &boardModel{
		tasks:         tasks,
		projects:      projects,
		keys:          defaultKeyMap(),
		help:          help.New(),
		projectFilter: -1,
		tickInterval:  time.Second,
	}
	m.refresh()
	return m
}

func (m *boardModel) Init() tea.Cmd {
	return tickCmd(m.tickInterval)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// scopeProject returns the active project filter, nil for all tasks.
func (m *boardModel) scopeProject() *int {
	if m.projectFilter < 0 || m.projectFilter >= len(m.projectList) {
		return nil
	}
	return &m.projectList[m.projectFilter].ID
}

func (m *boardModel) refresh() {
	m.projectList = m.projects.All()
	if m.projectFilter >= len(m.projectList) {
		m.projectFilter = -1
	}

	var scoped []model.Task
	if p := m.scopeProject(); p != nil {
		scoped = m.tasks.ByProject(*p)
	} else {
		scoped = m.tasks.All()
	}

	for i, status := range boardColumns {
		m.columns[i] = nil
		for _, task := range scoped {
			if task.Status == status {
				m.columns[i] = append(m.columns[i], task)
			}
		}
		if m.row[i] >= len(m.columns[i]) {
			m.row[i] = max(0, len(m.columns[i])-1)
		}
	}
}

func (m *boardModel) current() (model.Task, bool) {
	col := m.columns[m.col]
	if len(col) == 0 {
		return model.Task{}, false
	}
	return col[m.row[m.col]], true
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
		case key.Matches(msg, m.keys.Left):
			if m.col > 0 {
				m.col--
			}
		case key.Matches(msg, m.keys.Right):
			if m.col < len(boardColumns)-1 {
				m.col++
			}
		case key.Matches(msg, m.keys.Up):
			if m.row[m.col] > 0 {
				m.row[m.col]--
			}
		case key.Matches(msg, m.keys.Down):
			if m.row[m.col] < len(m.columns[m.col])-1 {
				m.row[m.col]++
			}
		case key.Matches(msg, m.keys.MoveUp):
			m.moveWithinColumn(-1)
		case key.Matches(msg, m.keys.MoveDn):
			m.moveWithinColumn(1)
		case key.Matches(msg, m.keys.Advance):
			m.advanceStatus()
		case key.Matches(msg, m.keys.Project):
			m.projectFilter++
			if m.projectFilter >= len(m.projectList) {
				m.projectFilter = -1
			}
			m.refresh()
		}
	}
	return m, nil
}

// moveWithinColumn swaps the selected task with its column neighbor by
// reordering the underlying scope.
func (m *boardModel) moveWithinColumn(delta int) {
	col := m.columns[m.col]
	pos := m.row[m.col]
	target := pos + delta
	if len(col) == 0 || target < 0 || target >= len(col) {
		return
	}

	scope := m.scopeProject()
	var scoped []model.Task
	if scope != nil {
		scoped = m.tasks.ByProject(*scope)
	} else {
		scoped = m.tasks.All()
	}
	from := indexOf(scoped, col[pos].ID)
	to := indexOf(scoped, col[target].ID)
	if from < 0 || to < 0 {
		return
	}

	if err := m.tasks.Move(from, to, scope); err != nil {
		m.lastErr = err
		return
	}
	m.lastErr = nil
	m.row[m.col] = target
	m.refresh()
}

func (m *boardModel) advanceStatus() {
	task, ok := m.current()
	if !ok {
		return
	}
	next := map[model.Status]model.Status{
		model.StatusTodo:       model.StatusInProgress,
		model.StatusInProgress: model.StatusDone,
		model.StatusDone:       model.StatusTodo,
	}[task.Status]

	if _, err := m.tasks.Update(task.ID, model.TaskPatch{Status: &next}); err != nil {
		m.lastErr = err
		return
	}
	m.lastErr = nil
	m.refresh()
}

func indexOf(tasks []model.Task, id int) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m *boardModel) View() string {
	title := "Tarefo"
	if p := m.scopeProject(); p != nil {
		title += " — " + m.projectList[m.projectFilter].Name
	} else {
		title += " — all tasks"
	}

	now := time.Now()
	cols := make([]string, len(boardColumns))
	for i, status := range boardColumns {
		cols[i] = m.renderColumn(i, status, now)
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	out := titleStyle.Render(title) + "\n\n" + board + "\n"
	if m.lastErr != nil {
		out += errStyle.Render("error: "+m.lastErr.Error()) + "\n"
	}
	out += m.help.View(m.keys)
	return out
}

func (m *boardModel) renderColumn(i int, status model.Status, now time.Time) string {
	header := headerStyle.Render(fmt.Sprintf("%s (%d)", columnTitle(status), len(m.columns[i])))
	lines := []string{header, ""}
	if len(m.columns[i]) == 0 {
		lines = append(lines, dimStyle.Render("empty"))
	}
	for j, task := range m.columns[i] {
		line := taskLine(task, now)
		if i == m.col && j == m.row[i] {
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return columnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func columnTitle(status model.Status) string {
	switch status {
	case model.StatusTodo:
		return "To Do"
	case model.StatusInProgress:
		return "In Progress"
	case model.StatusDone:
		return "Done"
	}
	return string(status)
}

func taskLine(task model.Task, now time.Time) string {
	badge := ""
	c := due.Classify(task, now)
	switch {
	case c.Overdue:
		badge = overdueStyle.Render("!") + " "
	case c.DueToday:
		badge = dueTodayStyle.Render("•") + " "
	case c.DueInDays:
		badge = dueSoonStyle.Render("~") + " "
	}
	return fmt.Sprintf("%s%s", badge, ansi.Truncate(task.Title, 26, "..."))
}

// IsTTY returns true if the writer is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, _ := f.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}
