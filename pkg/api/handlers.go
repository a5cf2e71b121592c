package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sayounara/foster-btree/pkg/btree"
)

// Server holds the API server state
type Server struct {
	engine   Engine
	snapshot func() error
	config   ServerConfig
	metrics  *Metrics
}

// NewServer creates a new API server. snapshot may be nil when no
// persistence backend is attached.
func NewServer(engine Engine, snapshot func() error, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		engine:   engine,
		snapshot: snapshot,
		config:   config,
		metrics:  metrics,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key, err := url.QueryUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		s.metrics.RecordTreeOperation("put", false, time.Since(start))
		sendError(w, "Valid key is required", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.metrics.RecordTreeOperation("put", false, time.Since(start))
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	if err := s.engine.Put([]byte(key), body); err != nil {
		s.metrics.RecordTreeOperation("put", false, time.Since(start))
		sendError(w, fmt.Sprintf("Failed to put key-value: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.RecordTreeOperation("put", true, time.Since(start))
	s.metrics.UpdateTreeStats(s.engine.Len(), s.engine.Height())
	sendSuccess(w, map[string]string{"message": "Key-value pair stored successfully"})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key, err := url.QueryUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		s.metrics.RecordTreeOperation("get", false, time.Since(start))
		sendError(w, "Valid key is required", http.StatusBadRequest)
		return
	}

	value, err := s.engine.Get([]byte(key))
	if err != nil {
		s.metrics.RecordTreeOperation("get", false, time.Since(start))
		var notFound *btree.KeyNotFoundError
		if errors.As(err, &notFound) {
			sendError(w, "Key not found", http.StatusNotFound)
		} else {
			sendError(w, fmt.Sprintf("Failed to get value: %v", err), http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordTreeOperation("get", true, time.Since(start))
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(value); err != nil {
		sendError(w, "Failed to write response", http.StatusInternalServerError)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	key, err := url.QueryUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		s.metrics.RecordTreeOperation("delete", false, time.Since(start))
		sendError(w, "Valid key is required", http.StatusBadRequest)
		return
	}

	if err := s.engine.Delete([]byte(key)); err != nil {
		s.metrics.RecordTreeOperation("delete", false, time.Since(start))
		var notFound *btree.KeyNotFoundError
		if errors.As(err, &notFound) {
			sendError(w, "Key not found", http.StatusNotFound)
		} else {
			sendError(w, fmt.Sprintf("Failed to delete key: %v", err), http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordTreeOperation("delete", true, time.Since(start))
	s.metrics.UpdateTreeStats(s.engine.Len(), s.engine.Height())
	sendSuccess(w, map[string]string{"message": "Key deleted successfully"})
}

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	prefix := []byte(r.URL.Query().Get("prefix"))

	keys := []string{}
	err := s.engine.Scan(func(key, _ []byte) bool {
		if bytes.HasPrefix(key, prefix) {
			keys = append(keys, string(key))
		}
		return true
	})
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list keys: %v", err), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, map[string]interface{}{"keys": keys})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := StatsResponse{
		Keys:   s.engine.Len(),
		Height: s.engine.Height(),
	}
	s.metrics.UpdateTreeStats(stats.Keys, stats.Height)
	sendSuccess(w, stats)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.snapshot == nil {
		sendError(w, "No persistence backend configured", http.StatusServiceUnavailable)
		return
	}

	if err := s.snapshot(); err != nil {
		s.metrics.RecordSnapshot(false)
		sendError(w, fmt.Sprintf("Failed to snapshot: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.RecordSnapshot(true)
	sendSuccess(w, map[string]string{"message": "Snapshot written successfully"})
}
