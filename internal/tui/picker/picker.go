// Package picker is the in-process candidate picker used when no external
// fuzzy finder is installed.
package picker

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Digital-Shane/title-fetch/internal/tui/theme"
	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

const (
	// maxListHeight caps the candidate rows shown at once.
	maxListHeight = 15

	// chromeLines covers the header, filter and status lines.
	chromeLines = 3
)

// Candidate is one selectable label and its position in the caller's list.
type Candidate struct {
	Index int
	Label string
}

// Model is the bubbletea model of the picker. The candidate list is a flat
// treeview filtered by the text typed into the prompt.
type Model struct {
	*treeview.TuiTreeModel[Candidate]

	labels  []string
	header  string
	theme   theme.Theme
	filter  textinput.Model
	visible []Candidate
	width   int
	height  int

	chosen int
	done   bool
}

// Option configures the picker model.
type Option func(*Model)

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(m *Model) {
		m.width = width
		m.height = height
	}
}

// New creates a picker over labels with header shown above the prompt.
func New(labels []string, header string, opts ...Option) *Model {
	m := &Model{
		labels: labels,
		header: header,
		theme:  theme.Default(),
		width:  80,
		height: maxListHeight + chromeLines,
		chosen: -1,
	}

	for _, opt := range opts {
		opt(m)
	}

	runewidth.DefaultCondition.EastAsianWidth = false
	runewidth.DefaultCondition.StrictEmojiNeutral = true

	m.filter = textinput.New()
	m.filter.Prompt = ""
	m.filter.Placeholder = "type to filter"
	m.filter.TextStyle = m.theme.FilterStyle()
	m.filter.PlaceholderStyle = m.theme.MutedStyle()
	m.filter.Focus()

	m.refresh()
	return m
}

// Selected returns the caller's index of the chosen candidate.
func (m *Model) Selected() (int, bool) {
	if !m.done || m.chosen < 0 {
		return -1, false
	}
	return m.chosen, true
}

// Visible returns the candidates that pass the current filter, best match
// first.
func (m *Model) Visible() []Candidate {
	return m.visible
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit

		case "enter":
			focused := m.TuiTreeModel.Tree.GetFocusedNode()
			if focused == nil {
				return m, nil
			}
			m.chosen = focused.Data().Index
			m.done = true
			return m, tea.Quit

		case "up", "down", "pgup", "pgdown", "home", "end", "ctrl+p", "ctrl+n":
			return m.updateList(normalizeNav(msg))
		}

		before := m.filter.Value()
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		if m.filter.Value() != before {
			m.refresh()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	treeModel, cmd := m.TuiTreeModel.Update(msg)
	m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[Candidate])
	return m, cmd
}

// normalizeNav maps the emacs-style bindings onto the arrow keys the list
// understands.
func normalizeNav(msg tea.KeyMsg) tea.KeyMsg {
	switch msg.String() {
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return msg
}

// refresh re-filters the labels and rebuilds the list with the best match
// focused.
func (m *Model) refresh() {
	m.visible = Filter(m.filter.Value(), m.labels)

	labelWidth := max(m.width-6, 10)
	nodes := make([]*treeview.Node[Candidate], 0, len(m.visible))
	for _, c := range m.visible {
		name := runewidth.Truncate(c.Label, labelWidth, "…")
		nodes = append(nodes, treeview.NewNode(strconv.Itoa(c.Index), name, c))
	}

	tree := treeview.NewTree(nodes)
	if len(nodes) > 0 {
		_, _ = tree.SetFocusedID(context.Background(), nodes[0].ID())
	}

	keyMap := treeview.DefaultKeyMap()
	keyMap.SearchStart = []string{}
	keyMap.Reset = []string{}

	m.TuiTreeModel = treeview.NewTuiTreeModel(tree,
		treeview.WithTuiWidth[Candidate](m.width),
		treeview.WithTuiHeight[Candidate](m.listHeight()),
		treeview.WithTuiAllowResize[Candidate](false),
		treeview.WithTuiDisableNavBar[Candidate](true),
		treeview.WithTuiKeyMap[Candidate](keyMap),
	)
}

func (m *Model) listHeight() int {
	h := min(len(m.labels), maxListHeight, m.height-chromeLines)
	return max(h, 1)
}

func (m *Model) View() string {
	var b strings.Builder

	header := m.header
	if header == "" {
		header = "Select an entry"
	}
	b.WriteString(m.theme.HeaderStyle().Width(m.width).Render(header))
	b.WriteByte('\n')

	b.WriteString(m.theme.PromptStyle().Render(m.theme.Icon("prompt")))
	b.WriteByte(' ')
	b.WriteString(m.filter.View())
	b.WriteByte('\n')

	if len(m.visible) == 0 {
		b.WriteString(m.theme.MutedStyle().Render("no matches"))
	} else {
		b.WriteString(m.TuiTreeModel.View())
	}
	b.WriteByte('\n')

	status := fmt.Sprintf("%d/%d  %s move  enter select  esc cancel",
		len(m.visible), len(m.labels), m.theme.Icon("arrows"))
	b.WriteString(m.theme.StatusBarStyle().Width(m.width).Render(status))
	return b.String()
}

// Filter returns the labels matching pattern, best match first. An empty
// pattern keeps every label in its original order.
func Filter(pattern string, labels []string) []Candidate {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		out := make([]Candidate, len(labels))
		for i, label := range labels {
			out[i] = Candidate{Index: i, Label: label}
		}
		return out
	}

	matches := fuzzy.Find(pattern, labels)
	out := make([]Candidate, 0, len(matches))
	for _, match := range matches {
		out = append(out, Candidate{Index: match.Index, Label: match.Str})
	}
	return out
}

// Run shows the picker on out, reading keys from in, and returns the index
// of the chosen label. Cancelling, an empty list or a terminal failure all
// report no selection.
func Run(ctx context.Context, labels []string, header string, in io.Reader, out io.Writer, opts ...Option) (int, bool, error) {
	if len(labels) == 0 {
		return -1, false, nil
	}

	model := New(labels, header, opts...)
	final, err := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	).Run()
	if err != nil {
		return -1, false, err
	}

	fm, ok := final.(*Model)
	if !ok {
		return -1, false, nil
	}
	idx, chosen := fm.Selected()
	return idx, chosen, nil
}
