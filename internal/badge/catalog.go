package badge

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog is an immutable table of badge rules
type Catalog struct {
	rules []models.BadgeRule
	byID  map[string]models.BadgeRule
}

type catalogFile struct {
	Badges []models.BadgeRule `yaml:"badges"`
}

// LoadCatalog decodes and validates a YAML catalog.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse badge catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]models.BadgeRule, len(file.Badges))}
	for _, rule := range file.Badges {
		if rule.ID == "" {
			return nil, fmt.Errorf("badge catalog entry %q has no id", rule.Name)
		}
		if _, dup := c.byID[rule.ID]; dup {
			return nil, fmt.Errorf("duplicate badge id %q", rule.ID)
		}
		switch rule.Type {
		case constants.BadgeTypeStreak, constants.BadgeTypeCategory, constants.BadgeTypeTotal:
		default:
			return nil, fmt.Errorf("badge %q has unknown type %q", rule.ID, rule.Type)
		}
		if rule.Requirement < 1 {
			return nil, fmt.Errorf("badge %q requirement must be at least 1", rule.ID)
		}
		c.byID[rule.ID] = rule
		c.rules = append(c.rules, rule)
	}

	// Lower requirements first so deltas come out in the order they were reached
	sort.SliceStable(c.rules, func(i, j int) bool {
		if c.rules[i].Type != c.rules[j].Type {
			return c.rules[i].Type < c.rules[j].Type
		}
		return c.rules[i].Requirement < c.rules[j].Requirement
	})
	return c, nil
}

// DefaultCatalog returns the catalog compiled into the binary. It is parsed
// once and shared.
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := LoadCatalog(bytes.NewReader(defaultCatalogYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded badge catalog is invalid: %v", err))
	}
	return c
})

// Rules returns a copy of all rules.
func (c *Catalog) Rules() []models.BadgeRule {
	out := make([]models.BadgeRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// OfType returns a copy of the rules of one type.
func (c *Catalog) OfType(t constants.BadgeType) []models.BadgeRule {
	var out []models.BadgeRule
	for _, r := range c.rules {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// Lookup returns the rule with the given id.
func (c *Catalog) Lookup(id string) (models.BadgeRule, bool) {
	r, ok := c.byID[id]
	return r, ok
}
