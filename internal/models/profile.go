package models

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleStaff   Role = "staff"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleStaff:
		return true
	}
	return false
}

// Profile is the canonical person record unifying all sensor identifiers.
// Exactly one of StudentID/StaffID must be set.
type Profile struct {
	EntityID   string    `json:"entity_id" db:"entity_id"`
	Name       string    `json:"name" db:"name"`
	Role       Role      `json:"role" db:"role"`
	Email      *string   `json:"email,omitempty" db:"email"`
	Department *string   `json:"department,omitempty" db:"department"`
	StudentID  *string   `json:"student_id,omitempty" db:"student_id"`
	StaffID    *string   `json:"staff_id,omitempty" db:"staff_id"`
	CardID     *string   `json:"card_id,omitempty" db:"card_id"`
	FaceID     *string   `json:"face_id,omitempty" db:"face_id"`
	DeviceHash *string   `json:"device_hash,omitempty" db:"device_hash"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

func (p *Profile) Validate() error {
	if p.EntityID == "" {
		return fmt.Errorf("profile: entity_id required")
	}
	if !p.Role.Valid() {
		return fmt.Errorf("profile %s: invalid role %q", p.EntityID, p.Role)
	}
	hasStudent := p.StudentID != nil && *p.StudentID != ""
	hasStaff := p.StaffID != nil && *p.StaffID != ""
	if hasStudent == hasStaff {
		return fmt.Errorf("profile %s: exactly one of student_id or staff_id must be set", p.EntityID)
	}
	return nil
}

// FaceEmbedding is a write-once 512-dimension face vector, optionally tied
// to a profile via face_id. A profile may have several enrollment vectors.
type FaceEmbedding struct {
	FaceID    string    `json:"face_id" db:"face_id"`
	EntityID  *string   `json:"entity_id,omitempty" db:"entity_id"`
	Embedding []float32 `json:"-" db:"embedding"`
	Model     string    `json:"embedding_model" db:"embedding_model"`
}

// EmbeddingDim is the dimensionality of all stored face embeddings.
const EmbeddingDim = 512
