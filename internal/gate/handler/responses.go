package handler

import (
	"net/http"

	"donorprofile/internal/gate"
	"donorprofile/internal/profile/models"
)

// Error strings of the JSON verify endpoint.
const (
	errorCaptcha    = "reCAPTCHA verification failed"
	errorMismatch   = "Invalid user information"
	errorValidation = "missing or invalid fields"
	errorNotFound   = "Profile not found"
	errorInFlight   = "verification attempt already in progress"

	messageVerified = "Verification successful"
)

// PreviewResponse is what a partial profile exposes before verification.
type PreviewResponse struct {
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar,omitempty"`
}

// ProfileStateResponse is the body of GET /api/public-profiles/{uuid}.
type ProfileStateResponse struct {
	State   string           `json:"state"`
	Profile *models.Profile  `json:"profile,omitempty"`
	Preview *PreviewResponse `json:"preview,omitempty"`
}

// VerifyResponse is the body of POST /api/verify-profile.
type VerifyResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details []string          `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Profile *models.Profile   `json:"profile,omitempty"`
}

func toStateResponse(st gate.State) ProfileStateResponse {
	resp := ProfileStateResponse{State: string(st.Phase)}
	switch st.Phase {
	case gate.PhaseDisplay:
		resp.Profile = st.Profile
	case gate.PhaseNeedsVerification:
		if st.Preview != nil {
			resp.Preview = &PreviewResponse{FullName: st.Preview.FullName, Avatar: st.Preview.Avatar}
		}
	}
	return resp
}

func toVerifyResponse(st gate.State) (int, VerifyResponse) {
	switch st.Phase {
	case gate.PhaseDisplay:
		return http.StatusOK, VerifyResponse{Success: true, Message: messageVerified, Profile: st.Profile}
	case gate.PhaseNotFound:
		return http.StatusNotFound, VerifyResponse{Error: errorNotFound}
	}

	switch st.Kind() {
	case gate.FailureValidation:
		return http.StatusBadRequest, VerifyResponse{Error: errorValidation, Fields: st.FieldErrors}
	case gate.FailureCaptcha:
		return http.StatusBadRequest, VerifyResponse{Error: errorCaptcha, Details: st.Failure.Details}
	default:
		return http.StatusUnauthorized, VerifyResponse{Error: errorMismatch}
	}
}
