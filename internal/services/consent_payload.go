package services

import (
	"fmt"
	"time"

	"github.com/Numffy/jumping-park-app-sub000/internal/models"
	"github.com/Numffy/jumping-park-app-sub000/internal/utils"
)

// normalizedSubmission is a ConsentSubmission that passed validation
type normalizedSubmission struct {
	adult     models.AdultSnapshot
	minors    []models.MinorRecord
	signature []byte
	ipAddress string
}

// normalizeSubmission validates the payload and computes the canonical
// adult and minor records. It performs no I/O.
func normalizeSubmission(sub models.ConsentSubmission, now time.Time, phoneRegion string) (*normalizedSubmission, error) {
	verr := models.NewValidationError()

	if !sub.AcceptedPolicy {
		verr.Add("acceptedPolicy", "policy must be accepted")
	}

	signature, err := utils.DecodeSignature(sub.Signature)
	if err != nil {
		verr.Add("signature", err.Error())
	}

	adult := normalizeAdult(sub.ResponsibleAdult, phoneRegion, verr)

	minors := make([]models.MinorRecord, 0, len(sub.Minors))
	for i, input := range sub.Minors {
		minor, ok := normalizeMinor(input, now, fmt.Sprintf("minors[%d]", i), verr)
		if ok {
			minors = append(minors, minor)
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}

	return &normalizedSubmission{
		adult:     adult,
		minors:    minors,
		signature: signature,
		ipAddress: sub.IPAddress,
	}, nil
}

func normalizeAdult(input models.AdultInput, phoneRegion string, verr *models.ValidationError) models.AdultSnapshot {
	adult := models.AdultSnapshot{
		Cedula:   utils.NormalizeCedula(input.DocumentID),
		FullName: utils.CollapseSpaces(input.FullName),
		Email:    utils.NormalizeEmail(input.Email),
		Address:  utils.CollapseSpaces(input.Address),
	}

	if !utils.IsValidCedula(adult.Cedula) {
		verr.Add("responsibleAdult.documentId", "must contain 6 to 10 digits")
	}
	if adult.FullName == "" {
		verr.Add("responsibleAdult.fullName", "is required")
	}
	if !utils.IsValidEmail(adult.Email) {
		verr.Add("responsibleAdult.email", "invalid email address")
	}

	phone := utils.CollapseSpaces(input.Phone)
	if phone != "" {
		if normalized, ok := utils.NormalizePhone(phone, phoneRegion); ok {
			phone = normalized
		}
	}
	adult.Phone = phone

	return adult
}

func normalizeMinor(input models.MinorInput, now time.Time, field string, verr *models.ValidationError) (models.MinorRecord, bool) {
	firstName := utils.CollapseSpaces(input.FirstName)
	lastName := utils.CollapseSpaces(input.LastName)
	fullName := utils.CollapseSpaces(input.FullName)
	if fullName == "" {
		fullName = utils.JoinName(firstName, lastName)
	}

	valid := true
	if fullName == "" {
		verr.Add(field+".fullName", "full name or first and last name is required")
		valid = false
	}

	birthDate, err := time.Parse(models.BirthDateLayout, input.BirthDate)
	switch {
	case err != nil:
		verr.Add(field+".birthDate", "must be a date in YYYY-MM-DD format")
		valid = false
	case birthDate.After(now):
		verr.Add(field+".birthDate", "must not be in the future")
		valid = false
	}

	relationship, ok := models.ParseRelationship(input.Relationship)
	if !ok {
		verr.Add(field+".relationship", "must be one of child, nephew_niece, grandchild, other")
		valid = false
	}

	if !valid {
		return models.MinorRecord{}, false
	}

	return models.MinorRecord{
		FullName:      fullName,
		FirstName:     firstName,
		LastName:      lastName,
		BirthDate:     birthDate.Format(models.BirthDateLayout),
		Relationship:  relationship,
		HealthInsurer: utils.CollapseSpaces(input.HealthInsurer),
		IDType:        utils.CollapseSpaces(input.IDType),
		IDNumber:      utils.CollapseSpaces(input.IDNumber),
	}, true
}
