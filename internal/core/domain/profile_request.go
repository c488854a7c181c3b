package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDeclined RequestStatus = "declined"
)

// Fields a user may ask to change through the approval workflow.
const (
	FieldName           = "name"
	FieldState          = "state"
	FieldProfilePicture = "profilePicture"
)

var editableFields = map[string]int{
	FieldName:           128,
	FieldState:          64,
	FieldProfilePicture: 2048,
}

// ProfileChanges maps an editable field to its requested value.
type ProfileChanges map[string]string

// Validate checks the change set against the allow-list and per-field limits.
func (c ProfileChanges) Validate() error {
	if len(c) == 0 {
		return NewValidationError("no profile changes supplied")
	}
	for _, field := range c.Fields() {
		limit, ok := editableFields[field]
		if !ok {
			return NewValidationError(fmt.Sprintf("field %q cannot be changed", field))
		}
		value := c[field]
		if strings.TrimSpace(value) == "" {
			return NewValidationError(field + " cannot be empty")
		}
		if len(value) > limit {
			return NewValidationError(fmt.Sprintf("%s must be at most %d characters", field, limit))
		}
	}
	return nil
}

// Fields returns the changed field names in a stable order.
func (c ProfileChanges) Fields() []string {
	fields := make([]string, 0, len(c))
	for f := range c {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// ProfileUpdateRequest is a user-submitted edit awaiting an administrator's decision.
// Records are never deleted; resolved ones remain as history.
type ProfileUpdateRequest struct {
	ID         string         `json:"id"`
	UserID     string         `json:"userId"`
	Changes    ProfileChanges `json:"changes"`
	Status     RequestStatus  `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	ResolvedAt *time.Time     `json:"resolvedAt,omitempty"`
	ResolvedBy string         `json:"resolvedBy,omitempty"`
}
