package profile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed sites.yaml
var builtinSites []byte

// ErrUnknownSite is returned when a site identifier has no profile
var ErrUnknownSite = errors.New("unknown site")

// File is the on-disk layout of a profiles document
type File struct {
	Sites []SiteProfile `yaml:"sites"`
}

// Registry is an ordered, read-only set of validated site profiles
type Registry struct {
	order    []string
	profiles map[string]*SiteProfile
}

// Builtin parses the profiles compiled into the binary
func Builtin() (*Registry, error) {
	return Parse(builtinSites)
}

// LoadFile reads a YAML profiles document from path
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a profiles document
func Parse(data []byte) (*Registry, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	if len(f.Sites) == 0 {
		return nil, fmt.Errorf("%w: document declares no sites", ErrInvalidProfile)
	}

	reg := &Registry{profiles: make(map[string]*SiteProfile, len(f.Sites))}
	for i := range f.Sites {
		p := f.Sites[i]
		p.ID = strings.ToLower(strings.TrimSpace(p.ID))
		p.applyDefaults()
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := reg.profiles[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidProfile, p.ID)
		}
		reg.profiles[p.ID] = &p
		reg.order = append(reg.order, p.ID)
	}
	return reg, nil
}

// Lookup returns the profile for id
func (r *Registry) Lookup(id string) (*SiteProfile, error) {
	p, ok := r.profiles[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownSite, id, strings.Join(r.IDs(), ", "))
	}
	return p, nil
}

// IDs returns the site identifiers in declaration order
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every profile in declaration order
func (r *Registry) All() []*SiteProfile {
	out := make([]*SiteProfile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out
}

// Select resolves ids, or every site when all is set. Unknown ids are an error.
func (r *Registry) Select(ids []string, all bool) ([]*SiteProfile, error) {
	if all {
		return r.All(), nil
	}
	seen := make(map[string]bool)
	var out []*SiteProfile
	var unknown []string
	for _, id := range ids {
		p, err := r.Lookup(id)
		if err != nil {
			unknown = append(unknown, id)
			continue
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownSite, strings.Join(unknown, ", "))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no sites selected")
	}
	return out, nil
}
