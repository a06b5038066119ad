package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	DatasetID     ID
	CalculationID ID
)

func NewDatasetID() DatasetID         { return DatasetID(NewID()) }
func NewCalculationID() CalculationID { return CalculationID(NewID()) }

func (id DatasetID) String() string     { return ID(id).String() }
func (id CalculationID) String() string { return ID(id).String() }

func (id DatasetID) IsEmpty() bool { return ID(id).IsEmpty() }

// ParseDatasetID parses a string into DatasetID. Only UUIDs are accepted.
func ParseDatasetID(s string) (DatasetID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("dataset ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("dataset ID %q is not a UUID: %w", s, err)
	}
	return DatasetID(s), nil
}
