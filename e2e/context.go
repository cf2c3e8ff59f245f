package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext holds the HTTP client and the last response of one scenario.
type TestContext struct {
	baseURL    string
	client     *http.Client
	statusCode int
	body       []byte
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (tc *TestContext) POST(path string, body interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequest(http.MethodGet, tc.baseURL+path, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	req.Header.Set("Accept", "application/json")
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	tc.statusCode = resp.StatusCode
	tc.body = body
	return nil
}

func (tc *TestContext) GetStatusCode() int {
	return tc.statusCode
}

func (tc *TestContext) GetResponseBody() []byte {
	return tc.body
}

// GetResponseField walks a dotted path such as "data.reference_number".
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var current interface{}
	if err := json.Unmarshal(tc.body, &current); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	for _, key := range strings.Split(field, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, key)
		}
		if current, ok = obj[key]; !ok {
			return nil, fmt.Errorf("field %q not found in response: %s", field, tc.body)
		}
	}
	return current, nil
}

// GetErrorFields returns the keys of the validation error map. Keys are
// dotted paths, so they cannot go through GetResponseField.
func (tc *TestContext) GetErrorFields() ([]string, error) {
	var env struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(tc.body, &env); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	fields := make([]string, 0, len(env.Errors))
	for field := range env.Errors {
		fields = append(fields, field)
	}
	return fields, nil
}
