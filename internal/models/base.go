package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Percentages are rendered as JSON numbers, matching what clients submit.
	decimal.MarshalJSONWithoutQuotes = true
}

// NewID returns a random identifier for primary keys and external tokens
func NewID() string {
	return uuid.NewString()
}

func ensureID(id *string) {
	if *id == "" {
		*id = NewID()
	}
}
