package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// TestContext is one browser: a cookie jar plus the last response.
type TestContext struct {
	BaseURL string
	client  *http.Client

	lastStatus int
	lastBody   []byte
}

// NewTestContext returns a context with an empty cookie jar.
func NewTestContext(baseURL string) *TestContext {
	jar, _ := cookiejar.New(nil)
	return &TestContext{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Jar: jar, Timeout: 30 * time.Second},
	}
}

// Reset forgets cookies, starting a new browser session.
func (tc *TestContext) Reset() {
	jar, _ := cookiejar.New(nil)
	tc.client.Jar = jar
	tc.lastStatus = 0
	tc.lastBody = nil
}

func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return tc.do(req)
}

func (tc *TestContext) POST(path string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

func (tc *TestContext) PostForm(path string, form url.Values) error {
	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GetLastResponseStatus() int {
	return tc.lastStatus
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.lastBody
}

// GetResponseField reads a top-level field of the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var m map[string]any
	if err := json.Unmarshal(tc.lastBody, &m); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	v, ok := m[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response", field)
	}
	return v, nil
}
