package handler

import (
	"strings"

	"donorprofile/internal/gate"
	dErrors "donorprofile/pkg/domain-errors"
)

const (
	maxFieldLength = 256
	maxTokenLength = 4096
)

// VerifyRequest is the HTTP request body for POST /api/verify-profile.
type VerifyRequest struct {
	UUID         string   `json:"uuid"`
	CaptchaToken string   `json:"captchaToken"`
	FormData     FormData `json:"formData"`
}

// FormData carries the identity answers.
type FormData struct {
	FullName    string `json:"fullName"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"`
	IDNumber    string `json:"idNumber"`
	PhoneNumber string `json:"phoneNumber"`
}

// Validate checks the request shape. Missing answers are not an error here:
// the gate reports them per field.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast)
	sizes := []struct {
		name  string
		value string
	}{
		{"uuid", r.UUID},
		{"formData.fullName", r.FormData.FullName},
		{"formData.gender", r.FormData.Gender},
		{"formData.dateOfBirth", r.FormData.DateOfBirth},
		{"formData.idNumber", r.FormData.IDNumber},
		{"formData.phoneNumber", r.FormData.PhoneNumber},
	}
	for _, f := range sizes {
		if len(f.value) > maxFieldLength {
			return dErrors.New(dErrors.CodeValidation, f.name+" must be at most 256 characters")
		}
	}
	if len(r.CaptchaToken) > maxTokenLength {
		return dErrors.New(dErrors.CodeValidation, "captchaToken must be at most 4096 characters")
	}

	r.UUID = strings.TrimSpace(r.UUID)
	if r.UUID == "" {
		return dErrors.New(dErrors.CodeValidation, "uuid is required")
	}
	return nil
}

func (r *VerifyRequest) toSubmission(remoteIP string) gate.Submission {
	return gate.Submission{
		UUID:         r.UUID,
		FullName:     r.FormData.FullName,
		Gender:       r.FormData.Gender,
		DateOfBirth:  r.FormData.DateOfBirth,
		IDNumber:     r.FormData.IDNumber,
		PhoneNumber:  r.FormData.PhoneNumber,
		CaptchaToken: r.CaptchaToken,
		RemoteIP:     remoteIP,
	}
}
