package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	headerAdminToken = "X-Admin-Token"
	headerAdminActor = "X-Admin-Actor"
)

// TestContext holds per-scenario HTTP state against a running roster server.
type TestContext struct {
	BaseURL    string
	AdminToken string
	Actor      string

	client       *http.Client
	lastStatus   int
	lastBody     []byte
	lastResponse map[string]any
	vars         map[string]string
}

func NewTestContext(baseURL, adminToken string) *TestContext {
	return &TestContext{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AdminToken: adminToken,
		Actor:      "e2e",
		client:     &http.Client{Timeout: 10 * time.Second},
		vars:       map[string]string{},
	}
}

// Reset clears response state between scenarios.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastResponse = nil
	tc.vars = map[string]string{}
}

func (tc *TestContext) POST(path string, body any) error {
	return tc.doJSON(http.MethodPost, path, body, true)
}

func (tc *TestContext) GET(path string) error {
	return tc.doJSON(http.MethodGet, path, nil, true)
}

func (tc *TestContext) DELETE(path string, body any) error {
	return tc.doJSON(http.MethodDelete, path, body, true)
}

func (tc *TestContext) POSTWithoutToken(path string, body any) error {
	return tc.doJSON(http.MethodPost, path, body, false)
}

// UploadFile posts content as the multipart "file" field.
func (tc *TestContext) UploadFile(path, filename, content string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(part, content); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	tc.authorize(req)
	return tc.send(req)
}

func (tc *TestContext) doJSON(method, path string, body any, withToken bool) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withToken {
		tc.authorize(req)
	}
	return tc.send(req)
}

func (tc *TestContext) authorize(req *http.Request) {
	req.Header.Set(headerAdminToken, tc.AdminToken)
	req.Header.Set(headerAdminActor, tc.Actor)
}

func (tc *TestContext) send(req *http.Request) error {
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.lastResponse = nil
	if len(tc.lastBody) > 0 {
		var decoded map[string]any
		if json.Unmarshal(tc.lastBody, &decoded) == nil {
			tc.lastResponse = decoded
		}
	}
	return nil
}

func (tc *TestContext) GetLastStatus() int { return tc.lastStatus }

func (tc *TestContext) GetLastBody() string { return string(tc.lastBody) }

// GetResponseField resolves a dotted path such as "state.can_invite".
func (tc *TestContext) GetResponseField(field string) (any, error) {
	if tc.lastResponse == nil {
		return nil, fmt.Errorf("no JSON response (status %d): %s", tc.lastStatus, tc.lastBody)
	}
	var cur any = tc.lastResponse
	for _, part := range strings.Split(field, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		cur, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not found in response: %s", field, tc.lastBody)
		}
	}
	return cur, nil
}

func (tc *TestContext) Set(key, value string) { tc.vars[key] = value }

func (tc *TestContext) Get(key string) string { return tc.vars[key] }
