package store

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/difftable/pkg/diff"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/default.yaml
var defaultFixture []byte

var (
	// ErrUnknownKind is returned for fixture items with an unsupported kind.
	ErrUnknownKind = errors.New("unknown item kind")

	// ErrInvalidFixture is returned when a fixture cannot be decoded.
	ErrInvalidFixture = errors.New("invalid fixture")
)

// Fixture is a titled list of demo items.
type Fixture struct {
	Title string
	Items []diff.Item
}

type rawFixture struct {
	Title string           `yaml:"title"`
	Items []map[string]any `yaml:"items"`
}

// decoders maps an item kind to its decoder.
var decoders = map[string]func(raw map[string]any) (diff.Item, error){
	KeyHeader:     decodeAs[Header],
	KeySpacer:     decodeAs[Spacer],
	KeyCreditCard: decodeAs[CreditCard],
	KeyInsurance:  decodeAs[Insurance],
}

// DefaultFixture returns the built-in store screen.
func DefaultFixture() (Fixture, error) {
	return ParseFixture(defaultFixture)
}

// LoadFixture reads a fixture file. An empty path loads the default.
func LoadFixture(path string) (Fixture, error) {
	if path == "" {
		return DefaultFixture()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("reading fixture: %w", err)
	}
	f, err := ParseFixture(data)
	if err != nil {
		return Fixture{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseFixture decodes YAML fixture data. Every item needs a kind; items
// without an id get "<kind>-<n>", n counting items of that kind.
func ParseFixture(data []byte) (Fixture, error) {
	var raw rawFixture
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Fixture{}, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}

	f := Fixture{Title: raw.Title, Items: make([]diff.Item, 0, len(raw.Items))}
	counts := make(map[string]int)
	for i, entry := range raw.Items {
		kind, _ := entry["kind"].(string)
		decode, ok := decoders[kind]
		if !ok {
			return Fixture{}, fmt.Errorf("item %d: %w %q", i, ErrUnknownKind, kind)
		}

		fields := make(map[string]any, len(entry))
		for k, v := range entry {
			if k != "kind" {
				fields[k] = v
			}
		}
		counts[kind]++
		if _, ok := fields["id"]; !ok {
			fields["id"] = fmt.Sprintf("%s-%d", kind, counts[kind])
		}

		item, err := decode(fields)
		if err != nil {
			return Fixture{}, fmt.Errorf("%w: item %d (%s): %w", ErrInvalidFixture, i, kind, err)
		}
		f.Items = append(f.Items, item)
	}
	return f, nil
}

func decodeAs[T diff.Item](raw map[string]any) (diff.Item, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	return out, nil
}
