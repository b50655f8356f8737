package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/bookshelf/internal/catalog"
	"github.com/five82/bookshelf/internal/prefs"
	"github.com/five82/bookshelf/internal/reactive"
	"github.com/five82/bookshelf/internal/record"
	"github.com/five82/bookshelf/internal/state"
)

// Options configures the UI.
type Options struct {
	Context context.Context
	// Screen configures the catalog core. Dispatcher and Notifier are
	// replaced by the UI's own.
	Screen catalog.Options
	// Saver writes edited records. Editing is disabled when nil.
	Saver     Saver
	Columns   []string
	ThemeName string
	PrefsPath string
	// OnMount runs once the screen is mounted, on the UI goroutine. The
	// context is cancelled when the browser exits.
	OnMount func(ctx context.Context, d reactive.Dispatcher, s *catalog.Screen)
}

type mountMsg struct{}

// notice is the most recent footer message.
type notice struct {
	text   string
	danger bool
	at     time.Time
}

// noticeBoard is shared by every copy of the model so the catalog notifier
// can post to it.
type noticeBoard struct {
	current notice
}

func (b *noticeBoard) post(text string, danger bool) {
	b.current = notice{text: text, danger: danger, at: time.Now()}
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	cancel    context.CancelFunc
	opts      catalog.Options
	saver     Saver
	columns   []string
	prefsPath string
	onMount   func(context.Context, reactive.Dispatcher, *catalog.Screen)

	// Catalog core
	d       *programDispatcher
	store   *state.Store
	screen  *catalog.Screen
	notices *noticeBoard
	err     error

	// UI state
	theme    Theme
	keys     keyMap
	width    int
	height   int
	ready    bool
	showHelp bool
	modal    Modal

	// Data state
	snapshot state.Snapshot
	editBase record.Record

	// Components
	table   table.Model
	spinner spinner.Model
	help    help.Model
}

// New creates a new Bubble Tea model. The catalog screen is mounted by the
// first message Init produces.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	store := opts.Screen.Store
	if store == nil {
		store = &state.Store{}
	}

	columns := append([]string(nil), opts.Columns...)
	if len(columns) == 0 {
		columns = []string{catalog.DefaultSortKey}
	}

	m := Model{
		ctx:       ctx,
		cancel:    cancel,
		opts:      opts.Screen,
		saver:     opts.Saver,
		columns:   columns,
		prefsPath: opts.PrefsPath,
		onMount:   opts.OnMount,
		d:         newProgramDispatcher(),
		store:     store,
		notices:   &noticeBoard{},
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		table:     table.New(table.WithFocused(true)),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:      help.New(),
	}
	m.applyTheme()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return mountMsg{} },
		m.spinner.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(maxInt(msg.Height-headerHeight-footerHeight, 3))
		m.refreshTable()
		return m, nil

	case mountMsg:
		return m.mount()

	case dispatchMsg:
		for _, fn := range msg {
			fn()
		}
		m.sync()
		return m, m.d.wait(m.ctx)

	case inputMsg:
		return m.handleInput(msg)

	case savedMsg:
		title := msg.rec.String(catalog.DefaultSortKey)
		if title == "" {
			title = msg.rec.ID(m.idField())
		}
		m.notices.post(fmt.Sprintf("Saved %s", title), false)
		if m.screen != nil {
			m.screen.Refresh()
			if msg.created {
				m.screen.SetIdentifier(msg.rec.ID(m.idField()))
			}
		}
		m.sync()
		return m, nil

	case saveErrMsg:
		m.notices.post(fmt.Sprintf("Save failed: %v", msg.err), true)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		m.modal = ternaryModal(closed, nil, modal)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("bookshelf: %v\n", m.err)
	}
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

func (m Model) mount() (tea.Model, tea.Cmd) {
	opts := m.opts
	opts.Dispatcher = m.d
	opts.Store = m.store
	notices := m.notices
	opts.Notifier = catalog.NotifierFunc(func(message string) {
		notices.post(message, true)
	})

	screen, err := catalog.Mount(m.ctx, opts)
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	m.screen = screen
	if m.onMount != nil {
		m.onMount(m.ctx, m.d, screen)
	}
	m.sync()
	return m, m.d.wait(m.ctx)
}

// shutdown unmounts the screen and persists preferences. Safe to call more
// than once.
func (m Model) shutdown() {
	if m.screen != nil {
		m.screen.Unmount()
	}
	m.cancel()
	m.savePrefs()
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name}
	if m.screen != nil {
		p.SortKey = m.screen.SortKey()
	}
	_ = prefs.Save(m.prefsPath, p)
}

// sync copies the latest store snapshot into the model.
func (m *Model) sync() {
	m.snapshot = m.store.Snapshot()
	m.refreshTable()
}

func (m Model) idField() string {
	if m.screen != nil {
		return m.screen.IDField()
	}
	return record.DefaultIDField
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		m.modal = ternaryModal(closed, nil, modal)
		return m, cmd
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.shutdown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTheme()
		m.savePrefs()
		return m, nil
	}

	if m.screen == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.CycleSort):
		m.screen.SetSortKey(nextColumn(m.columns, m.screen.SortKey()))
		m.savePrefs()
		m.sync()

	case key.Matches(msg, m.keys.Filter):
		m.modal = newInputModal(inputFilter, "Server filter",
			"Field=value pairs sent with the request. Blank clears.",
			m.screen.Params().String())

	case key.Matches(msg, m.keys.Where):
		m.modal = newInputModal(inputWhere, "Local filter",
			`Expression over fields, e.g. Year < 1950 && Format == "Paperback"`,
			m.snapshot.Where)

	case key.Matches(msg, m.keys.Open):
		if rec, ok := m.selected(); ok {
			m.screen.SetIdentifier(rec.ID(m.idField()))
			m.sync()
		}

	case key.Matches(msg, m.keys.NewRecord):
		m.screen.SetIdentifier(NewIdentifier)
		m.sync()

	case key.Matches(msg, m.keys.Escape):
		m.screen.SetIdentifier("")
		m.sync()

	case key.Matches(msg, m.keys.Edit):
		m.beginEdit()

	case key.Matches(msg, m.keys.Refresh):
		m.screen.Refresh()
		m.sync()

	case key.Matches(msg, m.keys.Lookups):
		m.modal = newLookupModal(m.snapshot, catalog.TableNames(m.screen.Tables()), m.width, m.height)

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) beginEdit() {
	if m.saver == nil {
		m.notices.post("Editing is not available", true)
		return
	}
	snap := m.snapshot
	if !snap.HasTarget {
		m.notices.post("Select a record with enter, or press n to add one", false)
		return
	}
	if snap.EditTarget == NewIdentifier {
		m.editBase = record.Record{}
		m.modal = newInputModal(inputEdit, "New record",
			"Field=value pairs separated by ;",
			editSeed(m.editBase, m.columns))
		return
	}
	rec, ok := m.screen.Target()
	if !ok {
		m.notices.post(fmt.Sprintf("Record %s is not in the current collection", snap.EditTarget), true)
		return
	}
	m.editBase = rec.Clone()
	m.modal = newInputModal(inputEdit, "Edit "+snap.EditTarget,
		"Field=value pairs separated by ;. Empty values clear the field.",
		editSeed(m.editBase, m.columns))
}

func (m Model) handleInput(msg inputMsg) (tea.Model, tea.Cmd) {
	if m.screen == nil {
		return m, nil
	}
	switch msg.purpose {
	case inputFilter:
		params, err := record.ParseParams(splitPairs(msg.value))
		if err != nil {
			m.notices.post(err.Error(), true)
			return m, nil
		}
		m.screen.SetFilterParameters(params)
		m.sync()

	case inputWhere:
		m.screen.SetWhere(strings.TrimSpace(msg.value))
		m.sync()

	case inputEdit:
		rec, err := applyAssignments(m.editBase, msg.value)
		if err != nil {
			m.notices.post(err.Error(), true)
			return m, nil
		}
		return m, saveCmd(m.ctx, m.saver, m.idField(), rec)
	}
	return m, nil
}

// selected returns the record under the table cursor.
func (m Model) selected() (record.Record, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.snapshot.Visible) {
		return nil, false
	}
	return m.snapshot.Visible[i], true
}

// nextColumn returns the column after current, wrapping around. An unknown
// current key starts from the first column.
func nextColumn(columns []string, current string) string {
	for i, col := range columns {
		if col == current {
			return columns[(i+1)%len(columns)]
		}
	}
	return columns[0]
}

// splitPairs splits "Author=Ursula Le Guin Format=Paperback" into one entry
// per key. Words without '=' continue the previous value.
func splitPairs(input string) []string {
	var pairs []string
	for _, word := range strings.Fields(input) {
		if strings.Contains(word, "=") || len(pairs) == 0 {
			pairs = append(pairs, word)
			continue
		}
		pairs[len(pairs)-1] += " " + word
	}
	return pairs
}

func ternaryModal(cond bool, a, b Modal) Modal {
	if cond {
		return a
	}
	return b
}

// Run starts the browser and blocks until the user quits or the context is
// cancelled.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	opts.Context = ctx

	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.shutdown()
		if fm.err != nil {
			return fm.err
		}
	}
	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return err
	}
	return nil
}
