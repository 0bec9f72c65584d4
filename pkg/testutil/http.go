// Package testutil holds helpers shared by the handler and router tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donorprofile/pkg/platform/httputil"
)

// NewJSONRequest builds a request whose body is body marshaled to JSON.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err, "marshal request body")
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewRequestWithBody builds a JSON request from a raw body, for malformed input.
func NewRequestWithBody(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewFormRequest builds a urlencoded POST, as the verification page submits it.
func NewFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// UnmarshalResponse decodes the recorded body into a T. The body is left
// unread so later assertions can still inspect it.
func UnmarshalResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "decode response: %s", rr.Body.String())
	return &out
}

// AssertStatusAndError checks a domain error response written by httputil.WriteError.
func AssertStatusAndError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, "unexpected status code")
	resp := UnmarshalResponse[httputil.ErrorResponse](t, rr)
	assert.Equal(t, code, resp.Error, "unexpected error code")
}

// AssertJSONContains checks one top-level field of a JSON response.
func AssertJSONContains(t *testing.T, rr *httptest.ResponseRecorder, key string, want any) {
	t.Helper()
	fields := *UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, want, fields[key], "unexpected value for key %q", key)
}
