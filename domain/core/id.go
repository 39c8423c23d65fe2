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

// Grouping keys used by the scoring hierarchy
type (
	RunID     ID
	StudyID   ID
	FindingID ID
	DomainID  ID
)

func (id RunID) String() string     { return ID(id).String() }
func (id StudyID) String() string   { return ID(id).String() }
func (id FindingID) String() string { return ID(id).String() }
func (id DomainID) String() string  { return ID(id).String() }

// NewRunID creates a time-ordered identifier for one scoring run
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("run ID %q is not a UUID: %w", s, err)
	}
	return RunID(s), nil
}

// ParseStudyID parses a string into StudyID
func ParseStudyID(s string) (StudyID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("study ID cannot be empty")
	}
	return StudyID(strings.TrimSpace(s)), nil
}

// ParseFindingID parses a string into FindingID
func ParseFindingID(s string) (FindingID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("finding ID cannot be empty")
	}
	return FindingID(strings.TrimSpace(s)), nil
}
