package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"donorprofile/internal/gate"
	platformlogger "donorprofile/internal/platform/logger"
	"donorprofile/internal/platform/middleware"
	"donorprofile/internal/web"
	dErrors "donorprofile/pkg/domain-errors"
	"donorprofile/pkg/platform/httputil"
	"donorprofile/pkg/requestcontext"
)

// Service is the gating flow as seen by the HTTP layer.
type Service interface {
	Load(ctx context.Context, sessionID, rawUUID string) gate.State
	Submit(ctx context.Context, sessionID string, sub gate.Submission) (gate.State, error)
}

// Form field names posted by the verification page.
const (
	formFullName     = "fullName"
	formCaptchaToken = "g-recaptcha-response"
)

// Handler serves the profile pages and the JSON API.
type Handler struct {
	svc      Service
	pages    *web.Renderer
	logger   *slog.Logger
	submitMW []func(http.Handler) http.Handler
}

// Option configures a Handler.
type Option func(*Handler)

// WithSubmitMiddleware wraps the two verification POST routes, typically
// with a rate limiter.
func WithSubmitMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.submitMW = append(h.submitMW, mw...)
	}
}

// New creates a new gate Handler.
func New(svc Service, pages *web.Renderer, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		svc:    svc,
		pages:  pages,
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the HTML routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleHome)
	r.Get("/public-profile", h.handleIndex)
	r.Get("/public-profile/{uuid}", h.handleProfile)
	r.With(h.submitMW...).Post("/public-profile/{uuid}", h.handleVerifyForm)
}

// RegisterAPI registers the JSON routes. Mount it under /api.
func (h *Handler) RegisterAPI(r chi.Router) {
	r.Get("/public-profiles/{uuid}", h.handleGetProfile)
	r.With(h.submitMW...).Post("/verify-profile", h.handleVerifyProfile)
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, web.PageHome, web.HomeMeta(), web.HomeView{SampleUUID: web.ExampleUUIDs[0]})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, r, http.StatusOK, web.PageIndex, web.IndexMeta(), web.IndexView{ExampleUUIDs: web.ExampleUUIDs})
}

// handleProfile runs a page load: direct display, silent re-verification
// from the session cache, or the verification form.
func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := h.svc.Load(ctx, requestcontext.SessionID(ctx), chi.URLParam(r, "uuid"))
	h.renderState(w, r, st, web.FormValues{})
}

// handleVerifyForm handles the verification form post.
func (h *Handler) handleVerifyForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(ctx, "invalid verification form",
			"request_id", requestID,
			"error", err,
		)
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	sub := gate.Submission{
		UUID:         chi.URLParam(r, "uuid"),
		FullName:     r.PostFormValue(formFullName),
		Gender:       r.PostFormValue(gate.FieldGender),
		DateOfBirth:  r.PostFormValue(gate.FieldDateOfBirth),
		IDNumber:     r.PostFormValue(gate.FieldIDNumber),
		PhoneNumber:  r.PostFormValue(gate.FieldPhoneNumber),
		CaptchaToken: r.PostFormValue(formCaptchaToken),
		RemoteIP:     requestcontext.ClientIP(ctx),
	}

	st, err := h.submit(ctx, sub)
	if err != nil {
		if errors.Is(err, gate.ErrAttemptInFlight) {
			h.pages.Render(w, r, http.StatusConflict, web.PageVerify, web.VerifyMeta(sub.FullName), web.VerifyView{
				UUID:          sub.UUID,
				FullName:      sub.FullName,
				Form:          formValues(sub),
				GenderOptions: web.GenderOptions,
				Error:         gate.MessagePending,
			})
			return
		}
		h.pages.Render(w, r, http.StatusInternalServerError, web.PageNotFound, web.NotFoundMeta(), nil)
		return
	}
	h.renderState(w, r, st, formValues(sub))
}

// handleGetProfile returns the load result as JSON.
func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	st := h.svc.Load(ctx, requestcontext.SessionID(ctx), chi.URLParam(r, "uuid"))

	status := http.StatusOK
	if st.Phase == gate.PhaseNotFound {
		status = http.StatusNotFound
	}
	httputil.WriteJSON(w, status, toStateResponse(st))
}

// handleVerifyProfile is the JSON counterpart of the verification form.
func (h *Handler) handleVerifyProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	st, err := h.submit(ctx, req.toSubmission(requestcontext.ClientIP(ctx)))
	if err != nil {
		if errors.Is(err, gate.ErrAttemptInFlight) {
			httputil.WriteJSON(w, http.StatusConflict, VerifyResponse{Error: errorInFlight})
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "verification failed"))
		return
	}

	status, resp := toVerifyResponse(st)
	httputil.WriteJSON(w, status, resp)
}

func (h *Handler) submit(ctx context.Context, sub gate.Submission) (gate.State, error) {
	requestID := middleware.GetRequestID(ctx)
	st, err := h.svc.Submit(ctx, requestcontext.SessionID(ctx), sub)
	if err != nil {
		h.logger.WarnContext(ctx, "verification attempt rejected",
			"request_id", requestID,
			"uuid", sub.UUID,
			"error", err,
		)
		return st, err
	}

	h.logger.InfoContext(ctx, "verification attempt",
		"request_id", requestID,
		"uuid", st.UUID,
		"phase", st.Phase,
		"failure", st.Kind(),
		"id_number", platformlogger.MaskDigits(sub.IDNumber),
		"phone_number", platformlogger.MaskDigits(sub.PhoneNumber),
	)
	return st, nil
}

// renderState renders the terminal page for st. form is echoed back into the
// verification form when it is shown again.
func (h *Handler) renderState(w http.ResponseWriter, r *http.Request, st gate.State, form web.FormValues) {
	switch st.Phase {
	case gate.PhaseDisplay:
		if st.Profile != nil {
			h.pages.Render(w, r, http.StatusOK, web.PageProfile, web.ProfileMeta(*st.Profile), web.ProfileView{Profile: *st.Profile})
			return
		}
	case gate.PhaseNeedsVerification:
		view := verifyView(st, form)
		h.pages.Render(w, r, http.StatusOK, web.PageVerify, web.VerifyMeta(view.FullName), view)
		return
	case gate.PhaseNotFound:
	default:
		h.logger.ErrorContext(r.Context(), "page load ended in a non-terminal phase",
			"request_id", middleware.GetRequestID(r.Context()),
			"uuid", st.UUID,
			"phase", st.Phase,
		)
	}
	h.pages.Render(w, r, http.StatusNotFound, web.PageNotFound, web.NotFoundMeta(), nil)
}

func verifyView(st gate.State, form web.FormValues) web.VerifyView {
	view := web.VerifyView{
		UUID:          st.UUID,
		Form:          form,
		GenderOptions: web.GenderOptions,
		FieldErrors:   st.FieldErrors,
		CaptchaReset:  st.CaptchaReset,
	}
	if st.Preview != nil {
		view.FullName = st.Preview.FullName
		view.Avatar = st.Preview.Avatar
	}
	if st.Failure != nil {
		view.Error = st.Failure.Message
		view.Details = st.Failure.Details
	}
	return view
}

func formValues(sub gate.Submission) web.FormValues {
	return web.FormValues{
		Gender:      sub.Gender,
		DateOfBirth: sub.DateOfBirth,
		IDNumber:    sub.IDNumber,
		PhoneNumber: sub.PhoneNumber,
	}
}
