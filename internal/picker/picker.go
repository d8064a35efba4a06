// Package picker is a small terminal list for choosing bookmarks: a single
// pick from search results, or a checkbox tree for import selection.
package picker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/bmai/internal/model"
	"github.com/nikbrunner/bmai/internal/search"
)

// Mode selects single or multiple choice.
type Mode int

const (
	Single Mode = iota
	Multi
)

// Row is one visible line.
type Row struct {
	Node  *model.Node
	Depth int
}

// Picker is a bubbletea model for selecting nodes.
type Picker struct {
	title     string
	mode      Mode
	rows      []Row
	cursor    int
	offset    int
	checked   map[string]bool
	selected  bool
	cancelled bool
	width     int
	height    int
	keys      KeyMap
	styles    Styles
	help      help.Model
}

// New creates a single-choice Picker over search results.
func New(results []search.SearchResult, query string) Picker {
	rows := make([]Row, len(results))
	for i, r := range results {
		rows[i] = Row{Node: r.Bookmark}
	}
	return newPicker(fmt.Sprintf("Search: %s (%d results)", query, len(results)), Single, rows)
}

// NewTree creates a multi-choice Picker over the children of root, with
// everything checked.
func NewTree(root *model.Node, title string) Picker {
	var rows []Row
	var walk func(n *model.Node, depth int)
	walk = func(n *model.Node, depth int) {
		for _, c := range n.Children {
			rows = append(rows, Row{Node: c, Depth: depth})
			if c.IsFolder() {
				walk(c, depth+1)
			}
		}
	}
	if root != nil {
		walk(root, 0)
	}

	p := newPicker(title, Multi, rows)
	for _, r := range rows {
		p.checked[r.Node.ID] = true
	}
	return p
}

func newPicker(title string, mode Mode, rows []Row) Picker {
	return Picker{
		title:   title,
		mode:    mode,
		rows:    rows,
		checked: make(map[string]bool),
		width:   80,
		height:  24,
		keys:    DefaultKeyMap(),
		styles:  DefaultStyles(),
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.help.Width = msg.Width
		p.scroll()
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Cancel):
			p.cancelled = true
			return p, tea.Quit

		case key.Matches(msg, p.keys.Confirm):
			p.selected = true
			return p, tea.Quit

		case key.Matches(msg, p.keys.Down):
			if p.cursor < len(p.rows)-1 {
				p.cursor++
			}

		case key.Matches(msg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}

		case key.Matches(msg, p.keys.Top):
			p.cursor = 0

		case key.Matches(msg, p.keys.Bottom):
			if len(p.rows) > 0 {
				p.cursor = len(p.rows) - 1
			}

		case key.Matches(msg, p.keys.Toggle):
			if p.mode == Multi && len(p.rows) > 0 {
				n := p.rows[p.cursor].Node
				p.setChecked(n, !p.checked[n.ID])
			}

		case key.Matches(msg, p.keys.All):
			if p.mode == Multi {
				all := !p.allChecked()
				for _, r := range p.rows {
					p.checked[r.Node.ID] = all
				}
			}
		}
		p.scroll()
	}

	return p, nil
}

// setChecked sets n and, for folders, its whole subtree.
func (p Picker) setChecked(n *model.Node, on bool) {
	p.checked[n.ID] = on
	for _, c := range n.Children {
		p.setChecked(c, on)
	}
}

func (p Picker) allChecked() bool {
	for _, r := range p.rows {
		if !p.checked[r.Node.ID] {
			return false
		}
	}
	return true
}

// visible is the number of rows that fit between header and footer.
func (p Picker) visible() int {
	lines := p.height - 5
	if p.mode == Single {
		// title and url per row
		lines /= 2
	}
	if lines < 1 {
		lines = 1
	}
	return lines
}

// scroll keeps the cursor inside the visible window.
func (p *Picker) scroll() {
	n := p.visible()
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+n {
		p.offset = p.cursor - n + 1
	}
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(p.styles.Header.Render(p.title))
	b.WriteString("\n\n")

	if len(p.rows) == 0 {
		b.WriteString(p.styles.Empty.Render("Nothing to select"))
		b.WriteString("\n")
	}

	end := p.offset + p.visible()
	if end > len(p.rows) {
		end = len(p.rows)
	}
	for i := p.offset; i < end; i++ {
		p.renderRow(&b, i)
	}

	b.WriteString("\n")
	bindings := p.keys.ShortHelp()
	if p.mode == Multi {
		bindings = p.keys.multiHelp()
	}
	b.WriteString(p.help.ShortHelpView(bindings))

	return b.String()
}

func (p Picker) renderRow(b *strings.Builder, i int) {
	row := p.rows[i]
	n := row.Node

	cursor := "  "
	style := p.styles.Item
	if n.IsFolder() {
		style = p.styles.Folder
	}
	if i == p.cursor {
		cursor = "> "
		style = p.styles.Selected
	}

	if p.mode == Single {
		b.WriteString(cursor + style.Render(truncate(n.Title, p.width-2)) + "\n")
		b.WriteString("   " + p.styles.URL.Render(truncate(n.URL, p.width-3)) + "\n")
		return
	}

	box := "[ ]"
	if p.checked[n.ID] {
		box = "[x]"
	}
	title := n.Title
	if n.IsFolder() {
		title += "/"
	}
	indent := strings.Repeat("  ", row.Depth)
	room := p.width - len(cursor) - len(indent) - len(box) - 1
	title = truncate(title, room)
	b.WriteString(cursor + indent + p.styles.Check.Render(box) + " " + style.Render(title))
	if room -= utf8.RuneCountInString(title) + 2; n.IsBookmark() && room > 0 {
		b.WriteString("  " + p.styles.URL.Render(truncate(n.URL, room)))
	}
	b.WriteString("\n")
}

// SelectedBookmark returns the bookmark under the cursor, or nil if
// cancelled.
func (p Picker) SelectedBookmark() *model.Node {
	if p.cancelled || !p.selected {
		return nil
	}
	if p.cursor < len(p.rows) {
		return p.rows[p.cursor].Node
	}
	return nil
}

// Selected returns the checked ids for model.FilterByIDs. A folder is only
// listed when its whole subtree is checked, so partially checked folders are
// kept just as ancestors of their checked children. Nil if cancelled.
func (p Picker) Selected() map[string]bool {
	if p.cancelled || !p.selected {
		return nil
	}
	out := make(map[string]bool)
	var full func(n *model.Node) bool
	full = func(n *model.Node) bool {
		ok := p.checked[n.ID]
		for _, c := range n.Children {
			if !full(c) {
				ok = false
			}
		}
		if ok {
			out[n.ID] = true
		}
		return ok
	}
	for _, r := range p.rows {
		if r.Depth == 0 {
			full(r.Node)
		}
	}
	return out
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}

// Run shows the picker on the terminal and returns its final state.
func Run(p Picker, opts ...tea.ProgramOption) (Picker, error) {
	final, err := tea.NewProgram(p, opts...).Run()
	if err != nil {
		return p, err
	}
	return final.(Picker), nil
}
