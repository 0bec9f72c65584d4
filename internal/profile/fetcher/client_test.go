package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorprofile/internal/profile/models"
	"donorprofile/pkg/platform/circuit"
)

const testUUID = "3f2b8c1e-6a4d-4e8b-9c2f-1a2b3c4d5e6f"

func TestProfileResponseParser(t *testing.T) {
	t.Run("404 is not found without a body", func(t *testing.T) {
		result, err := parseProfileResponse(http.StatusNotFound, []byte(`not json`))
		require.NoError(t, err)
		assert.Equal(t, StatusNotFound, result.Status)
		assert.Nil(t, result.Profile)
	})

	t.Run("206 is partial", func(t *testing.T) {
		result, err := parseProfileResponse(http.StatusPartialContent, []byte(`{"id":7,"name":"Nguyễn Văn A","avatar":{"url":"a.png"}}`))
		require.NoError(t, err)
		assert.Equal(t, StatusPartial, result.Status)
		require.NotNil(t, result.Profile)
		assert.Equal(t, "Nguyễn Văn A", result.Profile.Name)
		assert.Nil(t, result.Profile.IDNumber)
	})

	t.Run("200 is full", func(t *testing.T) {
		result, err := parseProfileResponse(http.StatusOK, []byte(`{"id":7,"name":"A","blood_type":"o_pos","avatar":{"url":"a.png"}}`))
		require.NoError(t, err)
		assert.Equal(t, StatusFull, result.Status)
		require.NotNil(t, result.Profile.BloodType)
		assert.Equal(t, "o_pos", *result.Profile.BloodType)
	})

	t.Run("other statuses are categorized upstream errors", func(t *testing.T) {
		for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError, http.StatusBadGateway} {
			_, err := parseProfileResponse(status, []byte(`{}`))
			require.Error(t, err)
			assert.Equal(t, ErrorUpstreamStatus, GetCategory(err))
			assert.Equal(t, status >= 500, IsRetryable(err), "status %d", status)
		}
	})

	t.Run("malformed body is bad data", func(t *testing.T) {
		_, err := parseProfileResponse(http.StatusOK, []byte(`{"id":`))
		require.Error(t, err)
		assert.Equal(t, ErrorBadData, GetCategory(err))
		assert.False(t, IsRetryable(err))
	})
}

func TestClientFetch(t *testing.T) {
	t.Run("unauthenticated request carries no query", func(t *testing.T) {
		var gotPath, gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write([]byte(`{"id":1,"name":"A","avatar":{"url":"a.png"}}`))
		}))
		defer srv.Close()

		result, err := New(srv.URL).Fetch(context.Background(), testUUID, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusPartial, result.Status)
		assert.Equal(t, "/api/public_profiles/"+testUUID, gotPath)
		assert.Empty(t, gotQuery)
	})

	t.Run("answers are sent as query parameters with the birthday reformatted", func(t *testing.T) {
		var got url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.URL.Query()
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":1,"name":"A","avatar":{"url":"a.png"}}`))
		}))
		defer srv.Close()

		answers := &models.AnswerSet{
			UUID:        testUUID,
			Gender:      models.GenderFemale,
			DateOfBirth: "1990-05-15",
			IDNumber:    "012345678901",
			PhoneNumber: "0912345678",
		}
		result, err := New(srv.URL+"/").Fetch(context.Background(), testUUID, answers)
		require.NoError(t, err)
		assert.Equal(t, StatusFull, result.Status)
		assert.Equal(t, "female", got.Get("gender"))
		assert.Equal(t, "012345678901", got.Get("id_number"))
		assert.Equal(t, "0912345678", got.Get("phone_number"))
		assert.Equal(t, "15/05/1990", got.Get("birthday"))
	})

	t.Run("transport failure is retryable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := New(srv.URL).Fetch(context.Background(), testUUID, nil)
		require.Error(t, err)
		assert.Equal(t, ErrorTransport, GetCategory(err))
		assert.True(t, IsRetryable(err))
	})

	t.Run("slow upstream is cut off by the timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		_, err := New(srv.URL, WithTimeout(50*time.Millisecond)).Fetch(context.Background(), testUUID, nil)
		require.Error(t, err)
		assert.Equal(t, ErrorTransport, GetCategory(err))
	})

	t.Run("open breaker skips the upstream", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		breaker := circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
		client := New(srv.URL, WithBreaker(breaker))

		for i := 0; i < 2; i++ {
			_, err := client.Fetch(context.Background(), testUUID, nil)
			require.Error(t, err)
		}
		assert.True(t, breaker.IsOpen())

		_, err := client.Fetch(context.Background(), testUUID, nil)
		var fe *Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, ErrorCircuitOpen, fe.Category)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("caller cancellation does not trip the breaker", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":7,"name":"A","avatar":{"url":"a.png"}}`))
		}))
		defer srv.Close()

		breaker := circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
		client := New(srv.URL, WithBreaker(breaker))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		for i := 0; i < 5; i++ {
			_, err := client.Fetch(ctx, testUUID, nil)
			require.Error(t, err)
			assert.Equal(t, ErrorCanceled, GetCategory(err))
			assert.False(t, IsRetryable(err))
		}
		assert.False(t, breaker.IsOpen())

		result, err := client.Fetch(context.Background(), testUUID, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusFull, result.Status)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("client errors do not trip the breaker", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		breaker := circuit.New("test", circuit.WithFailureThreshold(1))
		_, err := New(srv.URL, WithBreaker(breaker)).Fetch(context.Background(), testUUID, nil)
		require.Error(t, err)
		assert.False(t, breaker.IsOpen())
	})
}
