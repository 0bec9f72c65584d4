package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"donorprofile/internal/gate"
	"donorprofile/internal/gate/handler/mocks"
	"donorprofile/internal/profile/models"
	"donorprofile/internal/web"
	"donorprofile/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

const (
	testUUID      = "550e8400-e29b-41d4-a716-446655440000"
	testSessionID = "0b7f1b2c-5d0e-4f57-9a53-2c4c1c7d9f10"
	testClientIP  = "203.0.113.7"
)

type GateHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *GateHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestGateHandlerSuite(t *testing.T) {
	suite.Run(t, new(GateHandlerSuite))
}

func newTestRouter(t *testing.T, opts ...Option) (http.Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pages, err := web.New("site-key", web.WithLogger(logger))
	require.NoError(t, err)

	h := New(mockService, pages, logger, opts...)
	r := chi.NewRouter()
	h.Register(r)
	r.Route("/api", h.RegisterAPI)
	return r, mockService
}

func donorProfile() *models.Profile {
	return &models.Profile{
		FullName:    "Nguyễn Văn An",
		DateOfBirth: "1990-05-15",
		Gender:      "Nam",
		BloodType:   "O+",
		Ranking:     models.Ranking{CurrentRank: 15, TotalDonations: 5, TotalDonors: 1250},
	}
}

func verificationForm() url.Values {
	return url.Values{
		"fullName":             {"Nguyễn Văn An"},
		"gender":               {"male"},
		"dateOfBirth":          {"1990-05-15"},
		"idNumber":             {"012345678901"},
		"phoneNumber":          {"0901234567"},
		"g-recaptcha-response": {"captcha-token"},
	}
}

func postForm(path string, form url.Values) *http.Request {
	return testutil.WithVisitor(testutil.NewFormRequest(path, form), testSessionID, testClientIP)
}

func get(path string) *http.Request {
	return testutil.WithVisitor(httptest.NewRequest(http.MethodGet, path, nil), testSessionID, testClientIP)
}

func (s *GateHandlerSuite) TestProfilePage() {
	s.Run("full profile renders the display page", func() {
		router, svc := newTestRouter(s.T())
		svc.EXPECT().Load(gomock.Any(), testSessionID, testUUID).
			Return(gate.State{Phase: gate.PhaseDisplay, UUID: testUUID, Profile: donorProfile()})

		rr := testutil.DoRequest(router, get("/public-profile/"+testUUID))

		s.Equal(http.StatusOK, rr.Code)
		s.Contains(rr.Body.String(), "<title>Hồ sơ hiến máu - Nguyễn Văn An</title>")
		s.Contains(rr.Body.String(), "Nhật ký hiến máu")
	})

	s.Run("partial profile renders the form with the preview", func() {
		router, svc := newTestRouter(s.T())
		svc.EXPECT().Load(gomock.Any(), testSessionID, testUUID).Return(gate.State{
			Phase:   gate.PhaseNeedsVerification,
			UUID:    testUUID,
			Preview: &models.Profile{FullName: "Nguyễn Văn An", Avatar: "https://cdn.example/a.jpg"},
		})

		rr := testutil.DoRequest(router, get("/public-profile/"+testUUID))

		s.Equal(http.StatusOK, rr.Code)
		body := rr.Body.String()
		s.Contains(body, `action="/public-profile/`+testUUID+`"`)
		s.Contains(body, "Nguyễn Văn An")
		s.Contains(body, `src="https://cdn.example/a.jpg"`)
		s.NotContains(body, "Nhật ký hiến máu")
	})

	s.Run("not found renders the 404 page", func() {
		router, svc := newTestRouter(s.T())
		svc.EXPECT().Load(gomock.Any(), testSessionID, "not-a-uuid").
			Return(gate.State{Phase: gate.PhaseNotFound, UUID: "not-a-uuid"})

		rr := testutil.DoRequest(router, get("/public-profile/not-a-uuid"))

		s.Equal(http.StatusNotFound, rr.Code)
		s.Contains(rr.Body.String(), "Không tìm thấy hồ sơ")
	})
}

func (s *GateHandlerSuite) TestVerifyForm() {
	s.Run("form fields reach the service", func() {
		router, svc := newTestRouter(s.T())
		want := gate.Submission{
			UUID:         testUUID,
			FullName:     "Nguyễn Văn An",
			Gender:       "male",
			DateOfBirth:  "1990-05-15",
			IDNumber:     "012345678901",
			PhoneNumber:  "0901234567",
			CaptchaToken: "captcha-token",
			RemoteIP:     testClientIP,
		}
		svc.EXPECT().Submit(gomock.Any(), testSessionID, want).
			Return(gate.State{Phase: gate.PhaseDisplay, UUID: testUUID, Profile: donorProfile()}, nil)

		rr := testutil.DoRequest(router, postForm("/public-profile/"+testUUID, verificationForm()))

		s.Equal(http.StatusOK, rr.Code)
		s.Contains(rr.Body.String(), "Nhật ký hiến máu")
	})

	s.Run("mismatch re-renders the form with the error and the typed values", func() {
		router, svc := newTestRouter(s.T())
		svc.EXPECT().Submit(gomock.Any(), testSessionID, gomock.Any()).Return(gate.State{
			Phase:        gate.PhaseNeedsVerification,
			UUID:         testUUID,
			Preview:      &models.Profile{FullName: "Nguyễn Văn An"},
			Failure:      &gate.Failure{Kind: gate.FailureMismatch, Message: gate.MessageMismatch},
			CaptchaReset: true,
		}, nil)

		rr := testutil.DoRequest(router, postForm("/public-profile/"+testUUID, verificationForm()))

		s.Equal(http.StatusOK, rr.Code)
		body := rr.Body.String()
		s.Contains(body, gate.MessageMismatch)
		s.Contains(body, `value="012345678901"`)
		s.Contains(body, `<option value="male" selected>Nam</option>`)
		s.Contains(body, "Vui lòng xác nhận lại reCAPTCHA")
	})

	s.Run("validation failure shows field messages", func() {
		router, svc := newTestRouter(s.T())
		svc.EXPECT().Submit(gomock.Any(), testSessionID, gomock.Any()).Return(gate.State{
			Phase:       gate.PhaseNeedsVerification,
			UUID:        testUUID,
			Failure:     &gate.Failure{Kind: gate.FailureValidation, Message: gate.MessageValidation},
			FieldErrors: map[string]string{gate.FieldPhoneNumber: "Vui lòng nhập số điện thoại"},
		}, nil)

		form := verificationForm()
		form.Del("phoneNumber")
		rr := testutil.DoRequest(router, postForm("/public-profile/"+testUUID, form))

		s.Equal(http.StatusOK, rr.Code)
		s.Contains(rr.Body.String(), gate.MessageValidation)
		s.Contains(rr.Body.String(), "Vui lòng nhập số điện thoại")
	})

	s.Run("concurrent attempt gets 409", func() {
		router, svc := newTestRouter(s.T())
		svc.EXPECT().Submit(gomock.Any(), testSessionID, gomock.Any()).Return(gate.State{}, gate.ErrAttemptInFlight)

		rr := testutil.DoRequest(router, postForm("/public-profile/"+testUUID, verificationForm()))

		s.Equal(http.StatusConflict, rr.Code)
		s.Contains(rr.Body.String(), gate.MessagePending)
	})

	s.Run("submit middleware runs before the service", func() {
		blocked := func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			})
		}
		router, _ := newTestRouter(s.T(), WithSubmitMiddleware(blocked))

		rr := testutil.DoRequest(router, postForm("/public-profile/"+testUUID, verificationForm()))
		s.Equal(http.StatusTooManyRequests, rr.Code)

		rr = testutil.DoRequest(router, postForm("/api/verify-profile", nil))
		s.Equal(http.StatusTooManyRequests, rr.Code)
	})
}

func (s *GateHandlerSuite) TestGetProfileAPI() {
	s.Run("display returns the profile", func() {
		router, svc := newTestRouter(s.T())
		svc.EXPECT().Load(gomock.Any(), testSessionID, testUUID).
			Return(gate.State{Phase: gate.PhaseDisplay, UUID: testUUID, Profile: donorProfile()})

		rr := testutil.DoRequest(router, get("/api/public-profiles/"+testUUID))

		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[ProfileStateResponse](s.T(), rr)
		s.Equal("display", resp.State)
		s.Require().NotNil(resp.Profile)
		s.Equal("O+", resp.Profile.BloodType)
		s.Nil(resp.Preview)
	})

	s.Run("partial returns only the preview", func() {
		router, svc := newTestRouter(s.T())
		svc.EXPECT().Load(gomock.Any(), testSessionID, testUUID).Return(gate.State{
			Phase:   gate.PhaseNeedsVerification,
			UUID:    testUUID,
			Preview: &models.Profile{FullName: "Nguyễn Văn An", BloodType: "O+"},
		})

		rr := testutil.DoRequest(router, get("/api/public-profiles/"+testUUID))

		s.Equal(http.StatusOK, rr.Code)
		s.NotContains(rr.Body.String(), "bloodType")
		resp := testutil.UnmarshalResponse[ProfileStateResponse](s.T(), rr)
		s.Equal("needs_verification", resp.State)
		s.Nil(resp.Profile)
		s.Require().NotNil(resp.Preview)
		s.Equal("Nguyễn Văn An", resp.Preview.FullName)
	})

	s.Run("not found returns 404", func() {
		router, svc := newTestRouter(s.T())
		svc.EXPECT().Load(gomock.Any(), testSessionID, testUUID).
			Return(gate.State{Phase: gate.PhaseNotFound, UUID: testUUID})

		rr := testutil.DoRequest(router, get("/api/public-profiles/"+testUUID))

		s.Equal(http.StatusNotFound, rr.Code)
		testutil.AssertJSONContains(s.T(), rr, "state", "not_found")
	})
}

func (s *GateHandlerSuite) TestVerifyProfileAPI() {
	body := VerifyRequest{
		UUID:         testUUID,
		CaptchaToken: "captcha-token",
		FormData: FormData{
			FullName:    "Nguyễn Văn An",
			Gender:      "female",
			DateOfBirth: "1990-05-15",
			IDNumber:    "012345678901",
			PhoneNumber: "0901234567",
		},
	}
	newReq := func(t *testing.T, v any) *http.Request {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/verify-profile", v)
		return testutil.WithVisitor(req, testSessionID, testClientIP)
	}

	tests := []struct {
		name       string
		state      gate.State
		err        error
		wantStatus int
		check      func(t *testing.T, resp *VerifyResponse)
	}{
		{
			name:       "verified",
			state:      gate.State{Phase: gate.PhaseDisplay, UUID: testUUID, Profile: donorProfile()},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, resp *VerifyResponse) {
				assert.True(t, resp.Success)
				assert.Equal(t, messageVerified, resp.Message)
				require.NotNil(t, resp.Profile)
				assert.Equal(t, "Nguyễn Văn An", resp.Profile.FullName)
			},
		},
		{
			name: "captcha failure carries the error codes",
			state: gate.State{
				Phase:   gate.PhaseNeedsVerification,
				Failure: &gate.Failure{Kind: gate.FailureCaptcha, Details: []string{"invalid-input-response"}},
			},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, resp *VerifyResponse) {
				assert.False(t, resp.Success)
				assert.Equal(t, errorCaptcha, resp.Error)
				assert.Equal(t, []string{"invalid-input-response"}, resp.Details)
			},
		},
		{
			name: "validation failure lists fields",
			state: gate.State{
				Phase:       gate.PhaseNeedsVerification,
				Failure:     &gate.Failure{Kind: gate.FailureValidation},
				FieldErrors: map[string]string{gate.FieldGender: "Vui lòng chọn giới tính"},
			},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, resp *VerifyResponse) {
				assert.Contains(t, resp.Fields, gate.FieldGender)
			},
		},
		{
			name: "mismatch",
			state: gate.State{
				Phase:   gate.PhaseNeedsVerification,
				Failure: &gate.Failure{Kind: gate.FailureMismatch, Message: gate.MessageMismatch},
			},
			wantStatus: http.StatusUnauthorized,
			check: func(t *testing.T, resp *VerifyResponse) {
				assert.Equal(t, errorMismatch, resp.Error)
				assert.Nil(t, resp.Profile)
			},
		},
		{
			name:       "not found",
			state:      gate.State{Phase: gate.PhaseNotFound},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "in flight",
			err:        gate.ErrAttemptInFlight,
			wantStatus: http.StatusConflict,
			check: func(t *testing.T, resp *VerifyResponse) {
				assert.Equal(t, errorInFlight, resp.Error)
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			router, svc := newTestRouter(s.T())
			svc.EXPECT().Submit(gomock.Any(), testSessionID, gate.Submission{
				UUID:         testUUID,
				FullName:     "Nguyễn Văn An",
				Gender:       "female",
				DateOfBirth:  "1990-05-15",
				IDNumber:     "012345678901",
				PhoneNumber:  "0901234567",
				CaptchaToken: "captcha-token",
				RemoteIP:     testClientIP,
			}).Return(tt.state, tt.err)

			rr := testutil.DoRequest(router, newReq(s.T(), body))

			s.Equal(tt.wantStatus, rr.Code)
			if tt.check != nil {
				tt.check(s.T(), testutil.UnmarshalResponse[VerifyResponse](s.T(), rr))
			}
		})
	}

	s.Run("malformed body never reaches the service", func() {
		router, _ := newTestRouter(s.T())
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/verify-profile", "{not json")

		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("missing uuid is rejected", func() {
		router, _ := newTestRouter(s.T())
		noUUID := body
		noUUID.UUID = "  "

		rr := testutil.DoRequest(router, newReq(s.T(), noUUID))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func TestVerifyRequestValidate(t *testing.T) {
	t.Run("oversized field", func(t *testing.T) {
		req := &VerifyRequest{UUID: "x", FormData: FormData{IDNumber: strings.Repeat("9", maxFieldLength+1)}}
		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "formData.idNumber")
	})

	t.Run("trims uuid", func(t *testing.T) {
		req := &VerifyRequest{UUID: "  " + testUUID + "\n"}
		require.NoError(t, req.Validate())
		assert.Equal(t, testUUID, req.UUID)
	})

	t.Run("nil request", func(t *testing.T) {
		var req *VerifyRequest
		assert.Error(t, req.Validate())
	})
}
