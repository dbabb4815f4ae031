package memory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mmynk/splitshare/internal/models"
)

// Seed is the on-disk shape read by LoadSeed.
type Seed struct {
	Groups   []models.Group   `json:"groups"`
	Expenses []models.Expense `json:"expenses"`
}

// LoadSeed returns a store holding the groups and expenses in the JSON file at path.
// Unknown fields are rejected.
func LoadSeed(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var seed Seed
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return NewSeeded(seed.Groups, seed.Expenses)
}
