package models

// IssueOtpRequest is the body of POST /otp/issue
type IssueOtpRequest struct {
	Cedula string `json:"cedula"`
	Email  string `json:"email"`
}

// ValidateOtpRequest is the body of POST /otp/validate
type ValidateOtpRequest struct {
	Cedula string `json:"cedula"`
	Email  string `json:"email"`
	Code   string `json:"code" binding:"required"`
}

// IdentityCheckRequest is the body of POST /identity/check
type IdentityCheckRequest struct {
	Cedula string `json:"cedula" binding:"required"`
}

// MinorInput is a minor as captured by the kiosk, before normalization.
// Either FullName or FirstName/LastName is expected.
type MinorInput struct {
	FullName      string `json:"fullName"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	BirthDate     string `json:"birthDate"`
	Relationship  string `json:"relationship"`
	HealthInsurer string `json:"healthInsurer"`
	IDType        string `json:"idType"`
	IDNumber      string `json:"idNumber"`
}

// AdultInput is the responsible adult captured during the OTP-gated session
type AdultInput struct {
	FullName   string `json:"fullName"`
	DocumentID string `json:"documentId"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

// ConsentSubmission is the body of POST /consent
type ConsentSubmission struct {
	AcceptedPolicy   bool         `json:"acceptedPolicy"`
	Minors           []MinorInput `json:"minors"`
	Signature        string       `json:"signature"`
	ResponsibleAdult AdultInput   `json:"responsibleAdult"`

	// IPAddress is filled from the request, never from the body
	IPAddress string `json:"-"`
}

// IssueOtpResponse is returned when a code was sent
type IssueOtpResponse struct {
	Message string `json:"message"`
}

// ValidateOtpResponse is returned by POST /otp/validate
type ValidateOtpResponse struct {
	Success bool            `json:"success"`
	Profile *VisitorProfile `json:"profile,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// IdentityCheckResponse is returned by POST /identity/check
type IdentityCheckResponse struct {
	Exists  bool           `json:"exists"`
	Profile *MaskedProfile `json:"profile,omitempty"`
}

// ConsentResponse is returned by POST /consent
type ConsentResponse struct {
	Success     bool   `json:"success"`
	ConsentID   string `json:"consentId"`
	Consecutivo int64  `json:"consecutivo"`
}

// ConsentVerificationResponse is returned by the admin consent lookup
type ConsentVerificationResponse struct {
	Consent *Consent `json:"consent"`
	Active  bool     `json:"active"`
}
