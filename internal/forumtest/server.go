// Package forumtest provides an in-process Discourse forum for tests.
package forumtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type route struct {
	status      int
	contentType string
	body        []byte
}

// Server serves canned responses keyed by request URI and records every request
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]route
	requests []string
}

// NewServer starts a server that is closed when the test ends
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{routes: make(map[string]route)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.RequestURI())
	rt, ok := s.routes[r.URL.RequestURI()]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if rt.contentType != "" {
		w.Header().Set("Content-Type", rt.contentType)
	}
	w.WriteHeader(rt.status)
	_, _ = w.Write(rt.body)
}

// JSON registers v, marshaled, as the response to uri
func (s *Server) JSON(uri string, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("forumtest: marshal %s: %v", uri, err))
	}
	s.Bytes(uri, "application/json", body)
}

// Bytes registers a raw response to uri
func (s *Server) Bytes(uri, contentType string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[uri] = route{status: http.StatusOK, contentType: contentType, body: body}
}

// Fail makes uri answer with status
func (s *Server) Fail(uri string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[uri] = route{status: status, body: []byte(http.StatusText(status))}
}

// Requests returns the request URIs received so far
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// RequestCount returns how many requests were received
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// ResetRequests forgets recorded requests
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}
