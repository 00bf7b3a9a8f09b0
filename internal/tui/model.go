// Package tui renders the store screen as a terminal list view.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/difftable/internal/store"
	"github.com/leapstack-labs/difftable/internal/table"
	"github.com/leapstack-labs/difftable/pkg/configurator"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/leapstack-labs/difftable/pkg/section"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// FixtureMsg carries freshly loaded fixture items into the program.
type FixtureMsg struct {
	Items []diff.Item
	Err   error
}

// events receives table owner callbacks and batches the view rejected.
type events struct {
	selected string
	rejected error
}

func (e *events) DidSelectRow(item diff.Item, at section.IndexPath) {
	e.selected = fmt.Sprintf("selected %s at %s", store.Describe(item), at)
}

func (e *events) WillDisplayCell(configurator.Cell, diff.Item, section.IndexPath) {}

// Model is the bubbletea model of the store screen.
type Model struct {
	title  string
	store  *store.Store
	table  *table.Table
	view   *listView
	events *events
	logger *slog.Logger

	keys KeyMap
	help help.Model

	width  int
	height int

	// cursor follows the identity of the highlighted row.
	cursor string

	status string
	err    error
}

// Config holds the dependencies of a Model.
type Config struct {
	Title    string
	Store    *store.Store
	Registry *configurator.Registry
	Logger   *slog.Logger
	DiffOpts []diff.Option
}

// New builds the store screen and attaches the store's model.
func New(cfg Config) (Model, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	registry := cfg.Registry
	if registry == nil {
		registry = configurator.NewRegistry(logger)
		if err := registry.RegisterAll(Configurators()...); err != nil {
			return Model{}, err
		}
	}

	m := Model{
		title:  cfg.Title,
		store:  cfg.Store,
		view:   newListView(),
		events: &events{},
		logger: logger,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		width:  defaultWidth,
		height: defaultHeight,
	}
	if m.title == "" {
		m.title = "Store"
	}

	m.table = table.New(registry, m.view,
		table.WithOwner(m.events),
		table.WithMeasurer(measurer{}),
		table.WithLogger(logger),
		table.WithDiffOptions(cfg.DiffOpts...),
		table.WithErrorHandler(func(err error) { m.events.rejected = err }),
	)
	m.view.model = m.table.Model

	if err := m.table.SetModel(cfg.Store.Model()); err != nil {
		return Model{}, err
	}
	if rows := m.view.rows(); len(rows) > 0 {
		m.cursor = m.view.key(rows[0])
	}
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case FixtureMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.mutate(func() (string, error) {
			if err := m.store.Replace(msg.Items); err != nil {
				return "", err
			}
			return fmt.Sprintf("fixture reloaded, %d items", len(msg.Items)), nil
		})
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Add):
		m.mutate(func() (string, error) {
			card, at, err := m.store.AddCreditCardAtRandom()
			if err != nil {
				return "", err
			}
			m.cursor = card.DiffIdentifier()
			return fmt.Sprintf("added %s at %d", card.Bank, at), nil
		})

	case key.Matches(msg, m.keys.Remove):
		m.mutate(func() (string, error) {
			removed, at, err := m.store.DeleteRandom()
			if err != nil {
				return "", err
			}
			if removed == nil {
				return "nothing to remove", nil
			}
			return fmt.Sprintf("removed %s from %d", store.Describe(removed), at), nil
		})

	case key.Matches(msg, m.keys.Batch):
		m.mutate(func() (string, error) {
			err := m.table.PerformUpdates(func() error {
				for range 2 {
					if _, _, err := m.store.AddCreditCardAtRandom(); err != nil {
						return err
					}
				}
				_, _, err := m.store.DeleteRandom()
				return err
			})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("batch applied, %d row ops", len(m.view.lastOps)), nil
		})

	case key.Matches(msg, m.keys.Reload):
		m.table.ReloadData()
		m.status = "reloaded"
		m.err = nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.Select):
		if p, ok := m.view.mirror.Find(m.cursor); ok {
			if err := m.table.SelectRow(p); err != nil {
				m.err = err
			} else {
				m.status = m.events.selected
			}
		}
	}
	return m, nil
}

// mutate runs fn, records its status line and keeps the cursor on a
// displayed row.
func (m *Model) mutate(fn func() (string, error)) {
	prevRows := m.view.rows()
	prevIndex := indexOf(m.view, prevRows, m.cursor)

	status, err := fn()
	if err == nil && m.events.rejected != nil {
		err = fmt.Errorf("view reloaded: %w", m.events.rejected)
	}
	m.events.rejected = nil
	if err != nil {
		m.err = err
		m.logger.Warn("mutation failed", "error", err)
	} else {
		m.err = nil
		m.status = status
	}

	rows := m.view.rows()
	if _, ok := m.view.mirror.Find(m.cursor); ok || len(rows) == 0 {
		if len(rows) == 0 {
			m.cursor = ""
		}
		return
	}
	m.cursor = m.view.key(rows[min(max(prevIndex, 0), len(rows)-1)])
}

func (m *Model) moveCursor(delta int) {
	rows := m.view.rows()
	if len(rows) == 0 {
		return
	}
	i := indexOf(m.view, rows, m.cursor) + delta
	i = min(max(i, 0), len(rows)-1)
	m.cursor = m.view.key(rows[i])
}

func indexOf(v *listView, rows []section.IndexPath, key string) int {
	for i, p := range rows {
		if v.key(p) == key {
			return i
		}
	}
	return -1
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	footer := m.footer()
	budget := m.height - 1 - lipgloss.Height(footer)
	b.WriteString(m.renderRows(budget))
	b.WriteString(footer)
	return b.String()
}

func (m Model) footer() string {
	var lines []string
	switch {
	case m.err != nil:
		lines = append(lines, errorStyle.Render(m.err.Error()))
	case m.status != "":
		lines = append(lines, statusStyle.Render(m.status))
	default:
		lines = append(lines, statusStyle.Render(fmt.Sprintf("%d rows", len(m.view.rows()))))
	}
	lines = append(lines, m.help.View(m.keys))
	return "\n" + strings.Join(lines, "\n")
}

// renderRows renders the rows that fit into budget lines, scrolled so the
// cursor row is visible.
func (m Model) renderRows(budget int) string {
	rows := m.view.rows()
	if len(rows) == 0 {
		return statusStyle.Render("no rows")
	}

	heights := make([]int, len(rows))
	for i, p := range rows {
		h, err := m.table.HeightForRow(p, m.width)
		if err != nil {
			h = 1
		}
		heights[i] = h
	}

	cur := max(indexOf(m.view, rows, m.cursor), 0)
	offset := visibleOffset(heights, cur, budget)

	var parts []string
	used := 0
	for i := offset; i < len(rows) && used < budget; i++ {
		parts = append(parts, m.renderRow(rows[i], i == cur))
		used += heights[i]
	}
	return strings.Join(parts, "\n")
}

func (m Model) renderRow(p section.IndexPath, selected bool) string {
	c, err := m.table.CellForRow(p)
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	defer func() {
		if item, ok := m.table.Item(p); ok {
			if k, ok := item.(configurator.Keyed); ok {
				m.table.EnqueueReusableCell(k.ConfiguratorKey(), c)
			}
		}
	}()

	body := ""
	if r, ok := c.(cell); ok {
		body = r.Render(bodyWidth(m.width))
	}

	style := rowStyle
	switch {
	case selected:
		style = selectedRowStyle
	case m.view.changed[m.view.key(p)] != 0:
		style = changedRowStyle
	}
	return style.Render(body)
}

// visibleOffset returns the first row to draw so that row cur still fits
// in budget lines.
func visibleOffset(heights []int, cur, budget int) int {
	offset := 0
	for offset < cur {
		used := 0
		for i := offset; i <= cur; i++ {
			used += heights[i]
		}
		if used <= budget {
			break
		}
		offset++
	}
	return offset
}
