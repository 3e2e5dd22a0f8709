// Package tui is the interactive browser: a bubbletea program whose model
// is the list view driven by a search coordinator.
package tui

import (
	"fmt"
	"strings"

	"github.com/FranLegon/cloud-drives-search/internal/coordinator"
	"github.com/FranLegon/cloud-drives-search/internal/logger"
	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/FranLegon/cloud-drives-search/internal/search"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

// postMsg carries a func posted by a fetch worker onto the event loop.
type postMsg func()

// startMsg starts the initial search once the program runs.
type startMsg struct {
	req search.Request
}

type inputMode int

const (
	modeBrowse inputMode = iota
	modeQuery
	modeFilter
)

// chrome is the number of lines around the item area.
const chrome = 7

// cycleTypes is the order in which tab walks the search types.
var cycleTypes = []search.Type{
	search.FileSearch,
	search.FavoriteSearch,
	search.RecentlyModifiedSearch,
	search.SharedFilter,
	search.GallerySearch,
	search.LocalSearch,
	search.OfflineMode,
}

// Options configure the browser.
type Options struct {
	Initial     search.Request
	GridColumns int
	Account     string
}

// Model is the bubbletea model. It implements coordinator.Adapter and
// coordinator.Filterable and posts coordinator work through the program.
type Model struct {
	coord   *coordinator.Coordinator
	send    func(tea.Msg)
	styles  *Styles
	input   textinput.Model
	spinner spinner.Model

	initial  search.Request
	account  string
	request  search.Request
	menu     search.MenuState
	mode     inputMode
	layout   coordinator.Layout
	columns  int
	folders  bool
	width    int
	height   int
	cursor   int
	offset   int
	quitting bool

	items   []model.Item
	empty   search.EmptyState
	loading bool
	notice  string
	filter  string
}

// New creates the model and its coordinator. Call SetProgram before
// running the program.
func New(fetcher search.Fetcher, opts Options, coordOpts ...coordinator.Option) *Model {
	ti := textinput.New()
	ti.Placeholder = "search files"
	ti.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	columns := opts.GridColumns
	if columns < 1 {
		columns = coordinator.DefaultThresholds.GridColumns
	}

	m := &Model{
		styles:  NewStyles(),
		input:   ti,
		spinner: sp,
		initial: opts.Initial,
		account: opts.Account,
		request: search.None,
		menu:    search.DefaultMenu,
		columns: columns,
		height:  24,
		width:   80,
	}
	m.coord = coordinator.New(fetcher, m, coordOpts...)
	return m
}

// SetProgram routes posted work through p.
func (m *Model) SetProgram(p *tea.Program) {
	m.send = p.Send
}

// Coordinator exposes the coordinator, e.g. to bind it to an event bus.
func (m *Model) Coordinator() *coordinator.Coordinator {
	return m.coord
}

// Post implements mainloop.Poster.
func (m *Model) Post(fn func()) {
	if m.send == nil {
		logger.Warning("Dropping posted work: program not attached")
		return
	}
	m.send(postMsg(fn))
}

func (m *Model) ReplaceItems(items []model.Item) {
	m.items = append([]model.Item(nil), items...)
	m.cursor, m.offset = 0, 0
}

func (m *Model) AppendItems(items []model.Item) {
	m.items = append(m.items, items...)
}

func (m *Model) SetEmptyState(state search.EmptyState) {
	m.empty = state
}

func (m *Model) SetLoadingState(loading bool) {
	m.loading = loading
}

func (m *Model) ShowNotice(msg string) {
	m.notice = msg
}

func (m *Model) Filter(query string) {
	m.filter = strings.ToLower(strings.TrimSpace(query))
	m.cursor, m.offset = 0, 0
}

func (m *Model) Init() tea.Cmd {
	req := m.initial
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return startMsg{req: req} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case postMsg:
		msg()
		return m, nil

	case startMsg:
		m.coord.AttachView(m)
		m.startSearch(msg.req)
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		// Any key dismisses the notice.
		m.notice = ""
		switch m.mode {
		case modeQuery, modeFilter:
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.coord.DetachView()
	return m, tea.Quit
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		mode := m.mode
		m.mode = modeBrowse
		m.input.Blur()
		if mode == modeQuery {
			typ := m.request.Type
			if typ == search.NoSearch {
				typ = search.FileSearch
			}
			m.startSearch(search.Request{Query: strings.TrimSpace(m.input.Value()), Type: typ, OnlyFolders: m.folders})
		}
		return m, nil
	case "esc":
		if m.mode == modeFilter {
			m.coord.Filter("")
		}
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeFilter {
		m.coord.Filter(m.input.Value())
	}
	return m, cmd
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "/":
		m.mode = modeQuery
		if m.request.Type == search.NoSearch {
			m.input.SetValue("")
		}
		return m, m.input.Focus()
	case "ctrl+f":
		m.mode = modeFilter
		m.input.SetValue(m.filter)
		return m, m.input.Focus()
	case "tab":
		m.startSearch(search.Request{Query: m.queryText(), Type: nextType(m.request.Type), OnlyFolders: m.folders})
	case "f":
		m.folders = !m.folders
		m.startSearch(search.Request{Query: m.request.Query, Type: m.request.Type, OnlyFolders: m.folders})
	case "g":
		if m.menu.Grid {
			if m.layout == coordinator.LayoutGrid {
				m.layout = coordinator.LayoutList
			} else {
				m.layout = coordinator.LayoutGrid
			}
			m.cursor, m.offset = 0, 0
		}
	case "esc":
		m.coord.ResetSession()
		m.coord.Filter("")
		m.startSearch(search.None)
	case "enter":
		if it, ok := m.selected(); ok && it.IsFolder {
			m.startSearch(search.Request{Query: it.ID, Type: search.NoSearch})
		}
	case "down", "j":
		m.move(m.step())
	case "up", "k":
		m.move(-m.step())
	case "right", "l":
		if m.layout == coordinator.LayoutGrid {
			m.move(1)
		}
	case "left", "h":
		if m.layout == coordinator.LayoutGrid {
			m.move(-1)
		}
	case "pgdown", " ":
		m.move(m.rows() * m.step())
	case "pgup":
		m.move(-m.rows() * m.step())
	}
	return m, nil
}

// startSearch starts req and applies the menu policy of its type.
func (m *Model) startSearch(req search.Request) {
	m.request = req
	m.menu = search.Classify(&req).Menu.Apply(m.menu)
	if !m.menu.Grid {
		m.layout = coordinator.LayoutList
	}
	m.coord.StartSearch(req)
}

func (m *Model) queryText() string {
	if m.request.Type == search.NoSearch {
		return ""
	}
	return m.request.Query
}

func nextType(t search.Type) search.Type {
	for i, c := range cycleTypes {
		if c == t {
			return cycleTypes[(i+1)%len(cycleTypes)]
		}
	}
	return cycleTypes[0]
}

func (m *Model) step() int {
	if m.layout == coordinator.LayoutGrid {
		return m.columns
	}
	return 1
}

// rows is the number of item rows that fit on screen.
func (m *Model) rows() int {
	if r := m.height - chrome; r > 0 {
		return r
	}
	return 1
}

// window is the number of items that fit on screen.
func (m *Model) window() int {
	return m.rows() * m.step()
}

func (m *Model) move(delta int) {
	if delta == 0 {
		return
	}
	matches := m.matches()
	if len(matches) == 0 {
		// Nothing to move over, but the next page may still hold items.
		if delta > 0 {
			m.scrolled(len(m.items)-1, delta)
		}
		return
	}

	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(matches) {
		m.cursor = len(matches) - 1
	}

	step := m.step()
	if m.cursor < m.offset {
		m.offset = m.cursor - m.cursor%step
	}
	if m.cursor >= m.offset+m.window() {
		m.offset = m.cursor - m.cursor%step - m.window() + step
	}

	last := m.offset + m.window() - 1
	if last >= len(matches)-1 {
		// Every loaded match is on screen.
		m.scrolled(len(m.items)-1, delta)
		return
	}
	m.scrolled(matches[last], delta)
}

// scrolled reports the window to the coordinator in positions of the
// loaded list, which differ from screen positions while a filter is set.
func (m *Model) scrolled(lastLoaded, delta int) {
	m.coord.OnScrolled(coordinator.ScrollWindow{
		FirstVisible: m.offset,
		LastVisible:  lastLoaded,
		Delta:        delta,
		Layout:       m.layout,
	})
}

// matches returns the positions of the loaded items that pass the local
// filter.
func (m *Model) matches() []int {
	out := make([]int, 0, len(m.items))
	for i, it := range m.items {
		if m.filter == "" || strings.Contains(strings.ToLower(it.Name), m.filter) {
			out = append(out, i)
		}
	}
	return out
}

// visible returns the items that pass the local filter.
func (m *Model) visible() []model.Item {
	if m.filter == "" {
		return m.items
	}
	var out []model.Item
	for _, i := range m.matches() {
		out = append(out, m.items[i])
	}
	return out
}

func (m *Model) selected() (model.Item, bool) {
	visible := m.visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return model.Item{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("cloud-drives-search"))
	if m.account != "" {
		b.WriteString(m.styles.Dim.Render("  " + m.account))
	}
	b.WriteString("\n")
	b.WriteString(m.headerLine())
	b.WriteString("\n")

	switch m.mode {
	case modeQuery:
		b.WriteString("search: " + m.input.View())
	case modeFilter:
		b.WriteString(m.styles.Filter.Render("filter: ") + m.input.View())
	default:
		if m.filter != "" {
			b.WriteString(m.styles.Filter.Render(fmt.Sprintf("filter: %s", m.filter)))
		}
	}
	b.WriteString("\n")

	visible := m.visible()
	switch {
	case len(visible) == 0 && m.loading:
		b.WriteString(m.spinner.View() + " " + m.empty.Headline + "\n")
	case len(m.items) == 0 && m.empty != (search.EmptyState{}):
		b.WriteString(m.emptyView())
	case m.layout == coordinator.LayoutGrid:
		b.WriteString(m.gridView(visible))
	default:
		b.WriteString(m.listView(visible))
	}

	if m.loading && len(visible) > 0 {
		b.WriteString(m.spinner.View() + m.styles.Dim.Render(" loading more") + "\n")
	}
	if m.notice != "" {
		b.WriteString(m.styles.Notice.Render(m.notice) + "\n")
	}
	b.WriteString(m.styles.Help.Render("/ search  tab type  f folders  g grid  ctrl+f filter  enter open  esc reset  q quit"))
	return b.String()
}

func (m *Model) headerLine() string {
	label := m.request.Type.String()
	if m.request.Type == search.NoSearch {
		label = "browse"
	}
	parts := []string{m.styles.Badge.Render(label)}
	if m.request.Type != search.NoSearch && m.request.Query != "" {
		parts = append(parts, fmt.Sprintf("%q", m.request.Query))
	}
	if m.folders {
		parts = append(parts, m.styles.Dim.Render("folders only"))
	}
	parts = append(parts, m.menuBadge("grid", m.menu.Grid), m.menuBadge("sort", m.menu.Sort), m.menuBadge("search", m.menu.Search))
	return strings.Join(parts, " ")
}

func (m *Model) menuBadge(name string, shown bool) string {
	if shown {
		return m.styles.Dim.Render("[" + name + "]")
	}
	return m.styles.BadgeOff.Render("-" + name)
}

func (m *Model) emptyView() string {
	icon := m.styles.EmptyIcon
	if m.empty.Tinted {
		icon = m.styles.TintedIcon
	}
	return icon.Render(iconGlyph(m.empty.Icon)) + " " +
		m.styles.EmptyTitle.Render(m.empty.Headline) + "\n" +
		m.styles.Dim.Render(m.empty.Message) + "\n"
}

func (m *Model) listView(visible []model.Item) string {
	var b strings.Builder
	end := m.offset + m.window()
	if end > len(visible) {
		end = len(visible)
	}
	for i := m.offset; i < end; i++ {
		line := m.itemLine(visible[i])
		if i == m.cursor {
			line = m.styles.Selected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m *Model) gridView(visible []model.Item) string {
	var b strings.Builder
	end := m.offset + m.window()
	if end > len(visible) {
		end = len(visible)
	}
	for row := m.offset; row < end; row += m.columns {
		var cells []string
		for i := row; i < row+m.columns && i < end; i++ {
			cell := m.styles.GridCell.Render(m.cellName(visible[i]))
			if i == m.cursor {
				cell = m.styles.Selected.Render(cell)
			}
			cells = append(cells, cell)
		}
		b.WriteString(strings.Join(cells, " ") + "\n")
	}
	return b.String()
}

func (m *Model) cellName(it model.Item) string {
	if it.IsFolder {
		return m.styles.Folder.Render(it.Name + "/")
	}
	return it.Name
}

func (m *Model) itemLine(it model.Item) string {
	if it.IsFolder {
		return m.styles.Folder.Render(it.Name+"/") + m.modified(it)
	}
	return fmt.Sprintf("%s  %s%s", it.Name, m.styles.Dim.Render(humanize.Bytes(uint64(it.Size))), m.modified(it))
}

func (m *Model) modified(it model.Item) string {
	if it.ModTime.IsZero() {
		return ""
	}
	return m.styles.Dim.Render("  " + humanize.Time(it.ModTime))
}
