package candidate

import (
	_ "embed"
	"fmt"
)

//go:embed demo_pool.json
var demoPoolJSON []byte

// DemoPool returns the built-in demo candidate pool. It is used when no pool
// file is configured, so the scanner can be exercised without real data.
func DemoPool() (*Pool, error) {
	pool, err := parsePool(demoPoolJSON)
	if err != nil {
		return nil, fmt.Errorf("parsing demo pool: %w", err)
	}
	return pool, nil
}
