// Package store holds the demo store screen: headers, spacers, credit cards
// and insurances in a single mutable section.
package store

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/difftable/pkg/diff"
)

// Configurator keys of the demo items.
const (
	KeyHeader     = "header"
	KeySpacer     = "spacer"
	KeyCreditCard = "credit_card"
	KeyInsurance  = "insurance"
)

// Header is a large title row, optionally linking somewhere.
type Header struct {
	ID        string `mapstructure:"id"`
	Title     string `mapstructure:"title"`
	ButtonURL string `mapstructure:"button_url"`
}

func (h Header) DiffIdentifier() string  { return KeyHeader + ":" + h.ID }
func (h Header) ConfiguratorKey() string { return KeyHeader }
func (h Header) Summary() string         { return h.Title }

func (h Header) DiffEqual(other diff.Item) bool {
	o, ok := other.(Header)
	return ok && o == h
}

// Spacer is blank vertical space of a fixed height.
type Spacer struct {
	ID    string `mapstructure:"id"`
	Space int    `mapstructure:"space"`
}

func (s Spacer) DiffIdentifier() string  { return KeySpacer + ":" + s.ID }
func (s Spacer) ConfiguratorKey() string { return KeySpacer }
func (s Spacer) Summary() string         { return fmt.Sprintf("space %d", s.Space) }

func (s Spacer) DiffEqual(other diff.Item) bool {
	o, ok := other.(Spacer)
	return ok && o == s
}

// CreditCard is a bank card offer.
type CreditCard struct {
	ID     string `mapstructure:"id"`
	Bank   string `mapstructure:"bank"`
	Period string `mapstructure:"period"`
}

func (c CreditCard) DiffIdentifier() string  { return KeyCreditCard + ":" + c.ID }
func (c CreditCard) ConfiguratorKey() string { return KeyCreditCard }
func (c CreditCard) Summary() string         { return c.Bank + ", period: " + c.Period }

func (c CreditCard) DiffEqual(other diff.Item) bool {
	o, ok := other.(CreditCard)
	return ok && o == c
}

// Insurance is an insurance offer.
type Insurance struct {
	ID      string `mapstructure:"id"`
	Company string `mapstructure:"company"`
	Price   string `mapstructure:"price"`
}

func (i Insurance) DiffIdentifier() string  { return KeyInsurance + ":" + i.ID }
func (i Insurance) ConfiguratorKey() string { return KeyInsurance }
func (i Insurance) Summary() string         { return i.Company + ", price: " + i.Price }

func (i Insurance) DiffEqual(other diff.Item) bool {
	o, ok := other.(Insurance)
	return ok && o == i
}

// Summary is implemented by items that can describe themselves in one
// line.
type Summary interface {
	Summary() string
}

// Describe returns a one-line description of item for logs and CLI output.
func Describe(item diff.Item) string {
	if s, ok := item.(Summary); ok {
		return s.Summary()
	}
	return item.DiffIdentifier()
}

// WithText returns a copy of item with text as its title, bank or company.
// For spacers text is the space in points.
func WithText(item diff.Item, text string) (diff.Item, error) {
	switch v := item.(type) {
	case Header:
		v.Title = text
		return v, nil
	case CreditCard:
		v.Bank = text
		return v, nil
	case Insurance:
		v.Company = text
		return v, nil
	case Spacer:
		space, err := strconv.Atoi(text)
		if err != nil || space < 0 {
			return nil, fmt.Errorf("invalid spacer size %q", text)
		}
		v.Space = space
		return v, nil
	default:
		return nil, fmt.Errorf("%w %T", ErrUnknownKind, item)
	}
}
