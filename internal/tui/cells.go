package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/difftable/internal/store"
	"github.com/leapstack-labs/difftable/pkg/configurator"
	"github.com/leapstack-labs/difftable/pkg/section"
)

// cell is a terminal row. Render returns the row body without the row
// frame; width is the body width.
type cell interface {
	Render(width int) string
}

type headerCell struct {
	title string
	link  string
}

func (c *headerCell) Render(width int) string {
	out := headerStyle.Width(width).Render(c.title)
	if c.link != "" {
		out += "\n" + linkStyle.Width(width).Render("→ "+c.link)
	}
	return out
}

type spacerCell struct {
	lines int
}

func (c *spacerCell) Render(int) string {
	return strings.Repeat("\n", c.lines-1)
}

// mainCell shows a bold title over a small detail line.
type mainCell struct {
	main  string
	small string
}

func (c *mainCell) Render(width int) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		mainStyle.Width(width).Render(c.main),
		smallStyle.Width(width).Render(c.small),
	)
}

// spacerLines converts a spacer's point size into terminal lines.
func spacerLines(space int) int {
	return max(1, space/4)
}

// Configurators returns the configurators of the store screen items.
func Configurators() []configurator.Configurator {
	return []configurator.Configurator{
		configurator.New(store.KeyHeader,
			func() *headerCell { return &headerCell{} },
			nil,
			func(c *headerCell, h store.Header, _ section.IndexPath) {
				c.title = h.Title
				c.link = h.ButtonURL
			},
		),
		configurator.New(store.KeySpacer,
			func() *spacerCell { return &spacerCell{lines: 1} },
			func(s store.Spacer) int { return spacerLines(s.Space) },
			func(c *spacerCell, s store.Spacer, _ section.IndexPath) {
				c.lines = spacerLines(s.Space)
			},
		),
		configurator.New(store.KeyCreditCard,
			func() *mainCell { return &mainCell{} },
			nil,
			func(c *mainCell, card store.CreditCard, _ section.IndexPath) {
				c.main = card.Bank
				c.small = "period: " + card.Period
			},
		),
		configurator.New(store.KeyInsurance,
			func() *mainCell { return &mainCell{} },
			nil,
			func(c *mainCell, ins store.Insurance, _ section.IndexPath) {
				c.main = ins.Company
				c.small = "price: " + ins.Price
			},
		),
	}
}

// measurer sizes cells by rendering them.
type measurer struct{}

func (measurer) Measure(c configurator.Cell, width int) int {
	r, ok := c.(cell)
	if !ok {
		return 1
	}
	return lipgloss.Height(rowStyle.Render(r.Render(bodyWidth(width))))
}

func bodyWidth(width int) int {
	return max(1, width-rowFrameWidth())
}
