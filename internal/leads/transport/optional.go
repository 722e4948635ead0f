package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OptionalUUID distinguishes an absent field from an explicit null, so a
// partial update can clear a reference.
type OptionalUUID struct {
	Value *uuid.UUID
	Set   bool
}

func (o OptionalUUID) IsZero() bool {
	return !o.Set
}

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		o.Value = nil
		return nil
	}

	parsed, err := uuid.Parse(raw)
	if err != nil {
		return err
	}
	o.Value = &parsed
	return nil
}

// OptionalDate is a nullable YYYY-MM-DD field with the same absent/null
// distinction as OptionalUUID.
type OptionalDate struct {
	Value *time.Time
	Set   bool
}

func (o OptionalDate) IsZero() bool {
	return !o.Set
}

func (o *OptionalDate) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		o.Value = nil
		return nil
	}

	parsed, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return err
	}
	o.Value = &parsed
	return nil
}
