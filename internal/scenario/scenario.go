// Package scenario loads generation specs: the event catalogue, funnels and
// volume settings of one simulated product.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"eventsim/internal/funnel"
	"eventsim/internal/rng"
	"eventsim/internal/sampling"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSpec is returned for specs that cannot drive a generation run.
var ErrInvalidSpec = errors.New("invalid generation spec")

const (
	DefaultName      = "eventsim"
	DefaultNumUsers  = 100
	DefaultNumEvents = 1000
	DefaultNumDays   = 30
)

// Scenario is a validated generation spec.
type Scenario struct {
	Name      string
	Seed      string
	NumUsers  int
	NumEvents int
	NumDays   int

	Events  []funnel.EventConfig
	Funnels []funnel.Funnel
	// SuperProps are sampled onto every event.
	SuperProps map[string]sampling.Value[any]

	// AnonIDs gives every user a cluster of anonymous device ids.
	AnonIDs bool
	// SessionIDs gives every user a pool of session ids.
	SessionIDs bool
}

// document is the on-disk YAML shape.
type document struct {
	Name       string         `yaml:"name"`
	Seed       string         `yaml:"seed"`
	NumUsers   int            `yaml:"numUsers"`
	NumEvents  int            `yaml:"numEvents"`
	NumDays    int            `yaml:"numDays"`
	Events     []any          `yaml:"events"`
	Funnels    []funnelDoc    `yaml:"funnels"`
	SuperProps map[string]any `yaml:"superProps"`
	AnonIDs    bool           `yaml:"anonIds"`
	SessionIDs bool           `yaml:"sessionIds"`
}

// funnelDoc decodes a funnel on top of funnel.Template so omitted keys keep the
// template defaults. A first funnel without a conversion rate always converts.
type funnelDoc funnel.Funnel

func (d *funnelDoc) UnmarshalYAML(node *yaml.Node) error {
	f := funnel.Template()
	if err := node.Decode(&f); err != nil {
		return err
	}
	if f.IsFirstFunnel && !hasKey(node, "conversionRate") {
		f.ConversionRate = 100
	}
	*d = funnelDoc(f)
	return nil
}

func hasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Load reads and parses a YAML spec file.
func Load(r *rng.RNG, path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec %s: %w", path, err)
	}
	s, err := Parse(r, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Info().Str("path", path).Str("name", s.Name).Int("events", len(s.Events)).Int("funnels", len(s.Funnels)).Msg("Loaded generation spec")
	return s, nil
}

// ReadSeed returns the seed declared in a spec file, or "" when the file has
// none or cannot be read. It lets callers seed the generator before Parse draws
// from it.
func ReadSeed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var doc struct {
		Seed string `yaml:"seed"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ""
	}
	return doc.Seed
}

// Parse decodes a YAML spec. Missing volumes take the package defaults and bare
// event names get a random weight from r.
func Parse(r *rng.RNG, data []byte) (*Scenario, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if len(doc.Events) == 0 {
		return nil, fmt.Errorf("%w: no events", ErrInvalidSpec)
	}

	events, err := funnel.ValidateEventConfig(r, doc.Events)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	s := &Scenario{
		Name:       doc.Name,
		Seed:       doc.Seed,
		NumUsers:   doc.NumUsers,
		NumEvents:  doc.NumEvents,
		NumDays:    doc.NumDays,
		Events:     events,
		Funnels:    make([]funnel.Funnel, len(doc.Funnels)),
		SuperProps: make(map[string]sampling.Value[any], len(doc.SuperProps)),
		AnonIDs:    doc.AnonIDs,
		SessionIDs: doc.SessionIDs,
	}
	for i, f := range doc.Funnels {
		s.Funnels[i] = funnel.Funnel(f)
	}
	for k, v := range doc.SuperProps {
		s.SuperProps[k] = sampling.FromAny(v)
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scenario) applyDefaults() {
	if s.Name == "" {
		s.Name = DefaultName
	}
	if s.NumUsers == 0 {
		s.NumUsers = DefaultNumUsers
	}
	if s.NumEvents == 0 {
		s.NumEvents = DefaultNumEvents
	}
	if s.NumDays == 0 {
		s.NumDays = DefaultNumDays
	}
	for i := range s.Funnels {
		f := &s.Funnels[i]
		if f.Order == "" {
			f.Order = funnel.OrderSequential
		}
		if f.Weight == 0 {
			f.Weight = 1
		}
		if f.TimeToConvert == 0 {
			f.TimeToConvert = 1
		}
		if f.Props == nil {
			f.Props = map[string]any{}
		}
	}
}

// Validate checks the volume settings and every funnel.
func (s *Scenario) Validate() error {
	if s.NumUsers < 0 || s.NumEvents < 0 || s.NumDays < 0 {
		return fmt.Errorf("%w: negative volume (users=%d events=%d days=%d)", ErrInvalidSpec, s.NumUsers, s.NumEvents, s.NumDays)
	}
	if len(s.Events) == 0 {
		return fmt.Errorf("%w: no events", ErrInvalidSpec)
	}

	known := make(map[string]bool, len(s.Events))
	for _, e := range s.Events {
		known[e.Event] = true
	}
	for i, f := range s.Funnels {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("%w: funnel %d: %w", ErrInvalidSpec, i, err)
		}
		for _, step := range f.Sequence {
			if !known[step] {
				return fmt.Errorf("%w: funnel %d: unknown event %q", ErrInvalidSpec, i, step)
			}
		}
	}
	return nil
}

// Default returns the built-in e-commerce catalogue used when no spec file is
// given. Funnels are left empty so they get inferred.
func Default() *Scenario {
	s := &Scenario{
		Events: []funnel.EventConfig{
			{Event: "sign up", IsFirstEvent: true, Weight: 1, Properties: map[string]sampling.Value[any]{
				"signupMethod": sampling.List[any]("email", "google", "apple"),
			}},
			{Event: "page view", Weight: 10, Properties: map[string]sampling.Value[any]{
				"page": sampling.List[any]("/", "/help", "/account", "/product"),
			}},
			{Event: "search", Weight: 5, Properties: map[string]sampling.Value[any]{
				"query": sampling.List[any]("shoes", "hats", "socks", "jackets"),
			}},
			{Event: "view item", Weight: 6, Properties: map[string]sampling.Value[any]{
				"category": sampling.List[any]("apparel", "footwear", "accessories"),
			}},
			{Event: "add to cart", Weight: 3, Properties: map[string]sampling.Value[any]{
				"quantity": sampling.List[any](1, 1, 1, 2, 3),
			}},
			{Event: "checkout", Weight: 2, Properties: map[string]sampling.Value[any]{
				"amount": sampling.List[any](9.99, 19.99, 49.99, 99.99),
			}},
		},
		SuperProps: map[string]sampling.Value[any]{
			"platform": sampling.List[any]("web", "ios", "android"),
		},
		AnonIDs:    true,
		SessionIDs: true,
	}
	s.applyDefaults()
	return s
}

// EventNames lists the catalogue names in order.
func (s *Scenario) EventNames() []string {
	names := make([]string, len(s.Events))
	for i, e := range s.Events {
		names[i] = e.Event
	}
	return names
}

// Event returns the catalogue entry for name.
func (s *Scenario) Event(name string) (funnel.EventConfig, bool) {
	for _, e := range s.Events {
		if e.Event == name {
			return e, true
		}
	}
	return funnel.EventConfig{}, false
}
