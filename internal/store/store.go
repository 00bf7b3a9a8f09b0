package store

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"github.com/leapstack-labs/difftable/pkg/section"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Store is the table model of the store screen. It has a single section.
type Store struct {
	items *section.Section
	model *section.StaticModel

	rng    *rand.Rand
	newID  func() string
	logger *slog.Logger

	sectionOpts []section.Option
}

// Option configures a Store.
type Option func(*Store)

// WithSeed makes random placement and naming deterministic.
func WithSeed(seed uint64) Option {
	return func(s *Store) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithIDGenerator replaces the uuid generator used for new items.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the store logger. It is also passed to the section.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSectionOptions passes options to the underlying section.
func WithSectionOptions(opts ...section.Option) Option {
	return func(s *Store) {
		s.sectionOpts = append(s.sectionOpts, opts...)
	}
}

// New creates a store showing items.
func New(items []diff.Item, opts ...Option) (*Store, error) {
	s := &Store{
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		newID:  uuid.NewString,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	sectionOpts := append([]section.Option{section.WithLogger(s.logger)}, s.sectionOpts...)
	sec, err := section.New(items, sectionOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}
	s.items = sec
	s.model = section.NewModel(sec)
	return s, nil
}

// Model returns the table model.
func (s *Store) Model() section.Model {
	return s.model
}

// Section returns the store's only section.
func (s *Store) Section() *section.Section {
	return s.items
}

// Items returns a copy of the displayed items.
func (s *Store) Items() []diff.Item {
	return s.items.Items()
}

// AddCreditCardAtRandom inserts a credit card with a random bank name and
// period at a random position, ends included.
func (s *Store) AddCreditCardAtRandom() (CreditCard, int, error) {
	card := CreditCard{
		ID:     s.newID(),
		Bank:   s.randomString(5) + " Bank",
		Period: fmt.Sprintf("%d years", 5+s.rng.IntN(95)),
	}
	at := s.rng.IntN(s.items.Len() + 1)
	if err := s.items.InsertAt(at, card); err != nil {
		return CreditCard{}, -1, err
	}
	s.logger.Info("credit card added", "id", card.ID, "bank", card.Bank, "at", at)
	return card, at, nil
}

// DeleteRandom removes a random item. It does nothing on an empty store
// and then returns a nil item and -1.
func (s *Store) DeleteRandom() (diff.Item, int, error) {
	if s.items.Len() == 0 {
		return nil, -1, nil
	}
	at := s.rng.IntN(s.items.Len())
	removed, err := s.items.RemoveAt(at)
	if err != nil {
		return nil, -1, err
	}
	s.logger.Info("item removed", "id", removed.DiffIdentifier(), "at", at)
	return removed, at, nil
}

// Replace swaps every item, e.g. after the fixture file changed.
func (s *Store) Replace(items []diff.Item) error {
	if err := s.items.ReplaceAll(items); err != nil {
		return fmt.Errorf("replacing store items: %w", err)
	}
	s.logger.Info("store replaced", "items", len(items))
	return nil
}

// NewItem builds an item of kind with a fresh id and text applied as by
// WithText.
func (s *Store) NewItem(kind, text string) (diff.Item, error) {
	id := s.newID()
	var item diff.Item
	switch kind {
	case KeyHeader:
		item = Header{ID: id}
	case KeySpacer:
		item = Spacer{ID: id}
	case KeyCreditCard:
		item = CreditCard{ID: id, Period: "1 year"}
	case KeyInsurance:
		item = Insurance{ID: id, Price: "0 dollars"}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	return WithText(item, text)
}

func (s *Store) randomString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[s.rng.IntN(len(letters))]
	}
	return string(b)
}
