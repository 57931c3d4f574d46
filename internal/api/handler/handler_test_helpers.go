package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailpanel/internal/runner"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// scriptedRunner implements runner.Runner from a command-line to result map,
// keyed by the joined argv.
type scriptedRunner struct {
	results map[string]runner.Result
	errs    map[string]error
}

func newScriptedRunner() *scriptedRunner {
	return &scriptedRunner{
		results: map[string]runner.Result{},
		errs:    map[string]error{},
	}
}

func (s *scriptedRunner) on(res runner.Result, name string, args ...string) {
	s.results[strings.Join(append([]string{name}, args...), " ")] = res
}

func (s *scriptedRunner) Run(_ context.Context, _ time.Duration, name string, args ...string) (runner.Result, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	if err := s.errs[key]; err != nil {
		return runner.Result{}, err
	}
	res, ok := s.results[key]
	if !ok {
		return runner.Result{}, fmt.Errorf("unexpected command %q", key)
	}
	return res, nil
}
