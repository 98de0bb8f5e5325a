package candidate

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Pool is an ordered, read-only list of candidate profiles. The order is
// significant: it breaks score ties during a scan.
type Pool struct {
	Items []*Profile
}

func (p *Pool) Len() int {
	return len(p.Items)
}

// Names returns candidate names in pool order.
func (p *Pool) Names() []string {
	names := make([]string, 0, len(p.Items))
	for _, profile := range p.Items {
		names = append(names, profile.Name)
	}
	return names
}

func (p *Pool) FindByName(name string) *Profile {
	for _, profile := range p.Items {
		if profile.Name == name {
			return profile
		}
	}
	return nil
}

// LoadPool reads a JSON array of candidate profiles from path. Decoding is
// tolerant about scalar types (years of experience may arrive as a string),
// so externally produced pools survive loosely-typed exports. An empty file
// yields an empty pool.
func LoadPool(path string) (*Pool, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("pool path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pool file: %w", err)
	}

	return parsePool(data)
}

func parsePool(data []byte) (*Pool, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return &Pool{}, nil
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing pool: %w", err)
	}

	var profiles []*Profile
	cfg := &mapstructure.DecoderConfig{
		Result:           &profiles,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("building pool decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding pool: %w", err)
	}

	for _, profile := range profiles {
		if profile.YearsExperience < 0 {
			profile.YearsExperience = 0
		}
	}

	return &Pool{Items: profiles}, nil
}
