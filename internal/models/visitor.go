package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Relationship describes how a minor relates to the responsible adult
type Relationship string

const (
	RelationshipChild       Relationship = "child"
	RelationshipNephewNiece Relationship = "nephew_niece"
	RelationshipGrandchild  Relationship = "grandchild"
	RelationshipOther       Relationship = "other"
)

// relationshipAliases maps the labels the kiosk UI sends to the canonical values
var relationshipAliases = map[string]Relationship{
	"child":        RelationshipChild,
	"hijo":         RelationshipChild,
	"hija":         RelationshipChild,
	"hijo/a":       RelationshipChild,
	"nephew_niece": RelationshipNephewNiece,
	"nephew":       RelationshipNephewNiece,
	"niece":        RelationshipNephewNiece,
	"sobrino":      RelationshipNephewNiece,
	"sobrina":      RelationshipNephewNiece,
	"sobrino/a":    RelationshipNephewNiece,
	"grandchild":   RelationshipGrandchild,
	"nieto":        RelationshipGrandchild,
	"nieta":        RelationshipGrandchild,
	"nieto/a":      RelationshipGrandchild,
	"other":        RelationshipOther,
	"otro":         RelationshipOther,
	"otra":         RelationshipOther,
}

// ParseRelationship resolves a UI label to a Relationship
func ParseRelationship(value string) (Relationship, bool) {
	r, ok := relationshipAliases[strings.ToLower(strings.TrimSpace(value))]
	return r, ok
}

// BirthDateLayout is the wire format for minor birth dates
const BirthDateLayout = "2006-01-02"

// MinorRecord is a minor covered by a consent, already normalized
type MinorRecord struct {
	FullName      string       `json:"fullName" bson:"full_name"`
	FirstName     string       `json:"firstName,omitempty" bson:"first_name,omitempty"`
	LastName      string       `json:"lastName,omitempty" bson:"last_name,omitempty"`
	BirthDate     string       `json:"birthDate" bson:"birth_date"`
	Relationship  Relationship `json:"relationship" bson:"relationship"`
	HealthInsurer string       `json:"healthInsurer,omitempty" bson:"health_insurer,omitempty"`
	IDType        string       `json:"idType,omitempty" bson:"id_type,omitempty"`
	IDNumber      string       `json:"idNumber,omitempty" bson:"id_number,omitempty"`
}

// VisitorProfile is the responsible adult, keyed by cedula
type VisitorProfile struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Cedula    string             `json:"cedula" bson:"cedula"`
	FullName  string             `json:"fullName" bson:"full_name"`
	Email     string             `json:"email" bson:"email"`
	Phone     string             `json:"phone" bson:"phone"`
	Address   string             `json:"address,omitempty" bson:"address,omitempty"`
	Minors    []MinorRecord      `json:"minors" bson:"minors"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// VisitorUpsert carries the fields merged into a VisitorProfile on consent submission
type VisitorUpsert struct {
	Cedula   string
	FullName string
	Email    string
	Phone    string
	Address  string
	Minors   []MinorRecord
}

// MaskedProfile is the profile shape returned to unauthenticated kiosk screens
type MaskedProfile struct {
	Cedula     string `json:"cedula"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	MinorCount int    `json:"minorCount"`
}
