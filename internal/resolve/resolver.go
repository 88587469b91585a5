// Package resolve maps raw sensor identifiers to canonical entities and
// joins source records to the nearest preceding canonical event.
package resolve

import (
	"fmt"

	"github.com/your-org/sentinel/internal/models"
)

type IdentifierKind string

const (
	KindCardID     IdentifierKind = "card_id"
	KindFaceID     IdentifierKind = "face_id"
	KindDeviceHash IdentifierKind = "device_hash"
)

// CollisionError reports the same external identifier claimed by two
// different profiles. Collisions are a data-integrity error surfaced at
// import time; they are never resolved automatically.
type CollisionError struct {
	Kind     IdentifierKind
	Value    string
	EntityA  string
	EntityB  string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("identifier collision: %s %q claimed by both %s and %s",
		e.Kind, e.Value, e.EntityA, e.EntityB)
}

// Resolver is a precomputed index from external identifier values to
// canonical entity ids, built once per import batch.
type Resolver struct {
	index map[IdentifierKind]map[string]string
}

// NewResolver builds the identifier index from all profiles holding a
// non-null value for each identifier kind. Returns a *CollisionError if
// any identifier maps to more than one entity.
func NewResolver(profiles []models.Profile) (*Resolver, error) {
	r := &Resolver{index: map[IdentifierKind]map[string]string{
		KindCardID:     {},
		KindFaceID:     {},
		KindDeviceHash: {},
	}}

	for i := range profiles {
		p := &profiles[i]
		if err := r.add(KindCardID, p.CardID, p.EntityID); err != nil {
			return nil, err
		}
		if err := r.add(KindFaceID, p.FaceID, p.EntityID); err != nil {
			return nil, err
		}
		if err := r.add(KindDeviceHash, p.DeviceHash, p.EntityID); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Resolver) add(kind IdentifierKind, value *string, entityID string) error {
	if value == nil || *value == "" {
		return nil
	}
	if existing, ok := r.index[kind][*value]; ok && existing != entityID {
		return &CollisionError{Kind: kind, Value: *value, EntityA: existing, EntityB: entityID}
	}
	r.index[kind][*value] = entityID
	return nil
}

// Lookup returns the canonical entity id for a raw identifier value.
// The second return is false when the identifier is unresolved; unresolved
// source records are kept but never linked.
func (r *Resolver) Lookup(kind IdentifierKind, value string) (string, bool) {
	if value == "" {
		return "", false
	}
	id, ok := r.index[kind][value]
	return id, ok
}
