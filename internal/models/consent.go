package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConsentValidity is the fixed validity window of a signed consent
const ConsentValidity = 365 * 24 * time.Hour

// AdultSnapshot is the responsible adult exactly as submitted at signing time
type AdultSnapshot struct {
	Cedula   string `json:"documentId" bson:"cedula"`
	FullName string `json:"fullName" bson:"full_name"`
	Email    string `json:"email" bson:"email"`
	Phone    string `json:"phone" bson:"phone"`
	Address  string `json:"address,omitempty" bson:"address,omitempty"`
}

// Consent is the immutable record produced by a successful submission
type Consent struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Consecutivo   int64              `json:"consecutivo" bson:"consecutivo"`
	VisitorID     string             `json:"visitorId" bson:"visitor_id"`
	Adult         AdultSnapshot      `json:"adult" bson:"adult"`
	Minors        []MinorRecord      `json:"minors" bson:"minors"`
	SignatureURL  string             `json:"signatureUrl" bson:"signature_url"`
	SignaturePath string             `json:"signaturePath" bson:"signature_path"`
	PolicyVersion string             `json:"policyVersion" bson:"policy_version"`
	IPAddress     string             `json:"ipAddress,omitempty" bson:"ip_address,omitempty"`
	SignedAt      time.Time          `json:"signedAt" bson:"signed_at"`
	ValidUntil    time.Time          `json:"validUntil" bson:"valid_until"`
}

// IsActive returns true while now is inside the validity window
func (c *Consent) IsActive(now time.Time) bool {
	return !now.Before(c.SignedAt) && now.Before(c.ValidUntil)
}

// ConsentEvent is published after a consent has been durably stored
type ConsentEvent struct {
	Type        string    `json:"type"`
	ConsentID   string    `json:"consentId"`
	Consecutivo int64     `json:"consecutivo"`
	VisitorID   string    `json:"visitorId"`
	MinorCount  int       `json:"minorCount"`
	SignedAt    time.Time `json:"signedAt"`
	ValidUntil  time.Time `json:"validUntil"`
}

// ConsentEventIssued is the event type emitted for new consents
const ConsentEventIssued = "consent.issued"
