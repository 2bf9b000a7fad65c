// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date            time.Time         `json:"date"`
	ChainID         uint16            `json:"chain_id"` // The chain id calls must be signed for.
	Balances        map[string]uint64 `json:"balances"`
	RefuseTransfers []string          `json:"refuse_transfers"` // Accounts that reject incoming transfers.
}

// =============================================================================

// Load opens and consumes the genesis file at the specified path.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("reading genesis: %w", err)
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	return genesis, nil
}
