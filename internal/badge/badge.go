// Package badge picks the icon shown for a content record's category.
package badge

import (
	"fmt"
	"os"

	"github.com/example/psychly/pkg/models"
	"gopkg.in/yaml.v3"
)

// Category is one named list of icons, scanned in order
type Category struct {
	Name  string   `yaml:"name"`
	Icons []string `yaml:"icons"`
}

// Pool is an ordered set of icon categories plus the icon handed out when
// every icon in the pool has been used
type Pool struct {
	Categories []Category `yaml:"categories"`
	Fallback   string     `yaml:"fallback"`
}

// Assign returns the first icon of category not in used, then the first unused icon of
// any category in declaration order, and finally the pool's fallback icon
func (p *Pool) Assign(category string, used map[string]bool) string {
	for _, c := range p.Categories {
		if c.Name != category {
			continue
		}
		if icon, ok := firstUnused(c.Icons, used); ok {
			return icon
		}
		break
	}

	for _, c := range p.Categories {
		if icon, ok := firstUnused(c.Icons, used); ok {
			return icon
		}
	}

	return p.Fallback
}

// Names lists the category names in declaration order
func (p *Pool) Names() []string {
	names := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		names = append(names, c.Name)
	}
	return names
}

// Has reports whether category is declared in the pool
func (p *Pool) Has(category string) bool {
	for _, c := range p.Categories {
		if c.Name == category {
			return true
		}
	}
	return false
}

func firstUnused(icons []string, used map[string]bool) (string, bool) {
	for _, icon := range icons {
		if !used[icon] {
			return icon, true
		}
	}
	return "", false
}

// Pools holds one pool per content type
type Pools map[models.ContentType]*Pool

// For returns the pool of a content type, defaulting to the experiment pool
func (p Pools) For(t models.ContentType) *Pool {
	if pool, ok := p[t]; ok {
		return pool
	}
	return p[models.Experiment]
}

// Categories lists the category names of every pool, keyed by content type
func (p Pools) Categories() map[models.ContentType][]string {
	out := make(map[models.ContentType][]string, len(p))
	for t, pool := range p {
		out[t] = pool.Names()
	}
	return out
}

// DefaultPools returns the built-in icon pools
func DefaultPools() Pools {
	return Pools{
		models.Experiment: ExperimentPool(),
		models.Theory:     TheoryPool(),
	}
}

// LoadPools reads pools from a YAML file of the form
//
//	experiment:
//	  fallback: circle.fill
//	  categories:
//	    - name: social
//	      icons: [person.2.fill, person.3.fill]
//
// Content types missing from the file keep their built-in pool.
func LoadPools(path string) (Pools, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read badge pools: %w", err)
	}

	var raw map[string]*Pool
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse badge pools: %w", err)
	}

	pools := DefaultPools()
	for key, pool := range raw {
		t, ok := models.ParseContentType(key)
		if !ok {
			return nil, fmt.Errorf("unknown content type %q in badge pools", key)
		}
		if pool == nil || len(pool.Categories) == 0 {
			return nil, fmt.Errorf("badge pool %q has no categories", key)
		}
		if pool.Fallback == "" {
			pool.Fallback = pools[t].Fallback
		}
		pools[t] = pool
	}
	return pools, nil
}
