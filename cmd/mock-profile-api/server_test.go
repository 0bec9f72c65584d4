package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorprofile/internal/profile/adapter"
	"donorprofile/internal/profile/models"
)

const anUUID = "550e8400-e29b-41d4-a716-446655440000"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	donors, err := loadFixtures("")
	require.NoError(t, err)
	return newServer(donors, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func lookup(t *testing.T, h http.Handler, uuid string, q url.Values) (*httptest.ResponseRecorder, models.APIProfile) {
	t.Helper()
	target := "/api/public_profiles/" + uuid
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var p models.APIProfile
	if rec.Code != http.StatusNotFound {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	}
	return rec, p
}

func TestUnknownProfile(t *testing.T) {
	rec, _ := lookup(t, newTestServer(t), "00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPartialWithoutAnswers(t *testing.T) {
	rec, p := lookup(t, newTestServer(t), anUUID, nil)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "Nguyễn Văn An", p.Name)
	assert.Nil(t, p.BloodType)
	assert.Empty(t, p.Histories)
}

func TestFullWithMatchingAnswers(t *testing.T) {
	q := url.Values{
		"gender":       {"male"},
		"birthday":     {adapter.FormatBirthdayForAPI("1990-05-15")},
		"id_number":    {"079090001234"},
		"phone_number": {"0901234567"},
	}
	rec, p := lookup(t, newTestServer(t), "550E8400-E29B-41D4-A716-446655440000", q)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, p.BloodType)
	assert.Equal(t, "o_pos", *p.BloodType)
	assert.Len(t, p.Histories, 2)
	require.NotNil(t, p.Statistics)
	assert.Equal(t, 15, p.Statistics.CurrentRank)
}

func TestWrongAnswersStayPartial(t *testing.T) {
	q := url.Values{
		"gender":       {"female"},
		"birthday":     {"15/05/1990"},
		"id_number":    {"079090001234"},
		"phone_number": {"0901234567"},
	}
	rec, _ := lookup(t, newTestServer(t), anUUID, q)
	assert.Equal(t, http.StatusPartialContent, rec.Code)
}

func TestPublicProfileIsFull(t *testing.T) {
	rec, p := lookup(t, newTestServer(t), "6ba7b810-9dad-11d1-80b4-00c04fd430c8", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Trần Thị Bình", p.Name)
}

func TestParseFixturesRejectsBadUUID(t *testing.T) {
	_, err := parseFixtures([]byte("donors:\n  - uuid: nope\n    profile: {id: 1}\n"))
	assert.Error(t, err)
}
