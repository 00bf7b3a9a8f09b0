package storescreen

import (
	"encoding/hex"
	"fmt"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/difftable/internal/store"
	"github.com/leapstack-labs/difftable/pkg/configurator"
	"github.com/leapstack-labs/difftable/pkg/section"
)

// rowCell is a row of the web list. Cells are bound by configurators and
// rendered with Component.
type rowCell struct {
	kind   string
	title  string
	detail string
	link   string
	space  int
}

// RowID returns the DOM id of the row displaying the item with key.
func RowID(key string) string {
	return "row-" + hex.EncodeToString([]byte(key))
}

// SectionID returns the DOM id of the container of section s.
func SectionID(s int) string {
	return fmt.Sprintf("section-%d", s)
}

// Component renders the cell as the row element of key.
func (c *rowCell) Component(key string, selected bool) templ.Component {
	return rowItem(c, key, selected)
}

// selectedExpr is the client expression that highlights the row of key
// while the selected signal holds its id.
func selectedExpr(key string) string {
	return "$selected === '" + RowID(key) + "'"
}

// selectedSignal is the initial value of the selected signal.
func selectedSignal(key string) string {
	if key == "" {
		return "''"
	}
	return "'" + RowID(key) + "'"
}

func spacerAttrs(space int) templ.Attributes {
	return templ.Attributes{"style": fmt.Sprintf("height: %dpx", space)}
}

// Configurators returns the configurators of the store screen items.
// Row heights are left to the browser except for spacers.
func Configurators() []configurator.Configurator {
	return []configurator.Configurator{
		configurator.New(store.KeyHeader,
			func() *rowCell { return &rowCell{kind: store.KeyHeader} },
			nil,
			func(c *rowCell, h store.Header, _ section.IndexPath) {
				c.title = h.Title
				c.link = h.ButtonURL
			},
		),
		configurator.New(store.KeySpacer,
			func() *rowCell { return &rowCell{kind: store.KeySpacer} },
			func(s store.Spacer) int { return s.Space },
			func(c *rowCell, s store.Spacer, _ section.IndexPath) {
				c.space = s.Space
			},
		),
		configurator.New(store.KeyCreditCard,
			func() *rowCell { return &rowCell{kind: store.KeyCreditCard} },
			nil,
			func(c *rowCell, card store.CreditCard, _ section.IndexPath) {
				c.title = card.Bank
				c.detail = "period: " + card.Period
			},
		),
		configurator.New(store.KeyInsurance,
			func() *rowCell { return &rowCell{kind: store.KeyInsurance} },
			nil,
			func(c *rowCell, ins store.Insurance, _ section.IndexPath) {
				c.title = ins.Company
				c.detail = "price: " + ins.Price
			},
		),
	}
}
