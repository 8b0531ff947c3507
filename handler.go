package main

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Luzifer/webcam-cache/pkg/webcam"
)

// server delivers the webcam image, refreshing it on demand. The webcam
// is not safe for concurrent use, requests are serialized.
type server struct {
	cam *webcam.Webcam
	mu  sync.Mutex
}

func newServer(cam *webcam.Webcam) *server { return &server{cam: cam} }

func (s *server) register(r *mux.Router) {
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.PathPrefix("/").HandlerFunc(s.handleImage).Methods(http.MethodGet, http.MethodHead)

	r.SkipClean(true)
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *server) handleImage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		cacheHeader = "HIT"
		logger      = log.WithFields(log.Fields{
			"url":    s.cam.URL().String(),
			"target": s.cam.Target(),
		})
	)

	logger.Debug("Received request")

	res, err := s.cam.Refresh(r.Context())
	if err != nil {
		// Stale copy is still delivered if present
		logger.WithError(err).Warn("Unable to refresh image")
	}

	if res.Fetched {
		cacheHeader = "MISS"
	}
	w.Header().Set("X-Cache", cacheHeader)

	switch err := s.cam.SendToClient(w, r); {
	case err == nil:
		// This is fine

	case errors.Is(err, webcam.ErrFileNotFound):
		http.NotFound(w, r)

	default:
		logger.WithError(err).Error("Unable to deliver image")
		http.Error(w, "Unable to access cached image", http.StatusInternalServerError)
	}
}
