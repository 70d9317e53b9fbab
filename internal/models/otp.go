package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OtpRecord is the single active one-time code for an email
type OtpRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Email     string             `bson:"email" json:"email"`
	Cedula    string             `bson:"cedula,omitempty" json:"cedula,omitempty"`
	Code      string             `bson:"code" json:"code"`
	Attempts  int                `bson:"attempts" json:"attempts"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`
}

// Expired reports whether the code is past its expiry at now
func (r *OtpRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Destination identifies who a code is issued to or validated for.
// At least one field must be set.
type Destination struct {
	Cedula string
	Email  string
}

// Constants for one-time code configuration
const (
	OtpCodeLength = 6
	DefaultOtpTTL = 10 * time.Minute
)
