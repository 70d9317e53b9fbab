package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLog is one entry of the kiosk audit trail
type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Cedula    string             `bson:"cedula,omitempty" json:"cedula,omitempty"`
	Action    string             `bson:"action" json:"action"`
	Resource  string             `bson:"resource" json:"resource"`
	EntityID  string             `bson:"entity_id,omitempty" json:"entity_id,omitempty"`
	IPAddress string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	RequestID string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Outcome   string             `bson:"outcome" json:"outcome"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// Audit actions and resources
const (
	AuditActionIssue    = "ISSUE"
	AuditActionValidate = "VALIDATE"
	AuditActionCreate   = "CREATE"
	AuditActionRead     = "READ"

	AuditResourceOtp     = "otp"
	AuditResourceConsent = "consent"
	AuditResourceVisitor = "visitor"
)
