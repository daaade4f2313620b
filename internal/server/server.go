package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"pricefeed/internal/db"
	"pricefeed/internal/syncer"
)

// Runner triggers one pipeline run; implemented by *syncer.Syncer.
type Runner interface {
	RunOnce(ctx context.Context, source string) (*db.FeedRun, error)
}

// Server exposes the trigger endpoint the external scheduler calls.
type Server struct {
	log    zerolog.Logger
	secret string
	runner Runner
}

func New(log zerolog.Logger, cronSecret string, runner Runner) *Server {
	return &Server{
		log:    log.With().Str("component", "server").Logger(),
		secret: cronSecret,
		runner: runner,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cron", s.handleCron)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

// handleCron is the only authenticated boundary: a bad token rejects the
// request before any processing starts.
func (s *Server) handleCron(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.secret == "" {
		http.Error(w, "trigger disabled: no cron secret configured", http.StatusServiceUnavailable)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+s.secret {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("cron trigger rejected: bad token")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	run, err := s.runner.RunOnce(r.Context(), "http")
	if err != nil {
		if errors.Is(err, syncer.ErrRunInProgress) {
			http.Error(w, "a run is already in progress", http.StatusConflict)
			return
		}
		s.log.Error().Err(err).Msg("triggered run failed")
		if run == nil {
			// the feed never arrived or the run could not start
			http.Error(w, "unable to process feed", http.StatusBadGateway)
			return
		}
		http.Error(w, "feed run failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(runSummary(run)); err != nil {
		s.log.Error().Err(err).Msg("writing trigger response")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type summary struct {
	RunID    uint `json:"runId"`
	Fetched  int  `json:"fetched"`
	Dropped  int  `json:"dropped"`
	Inserted int  `json:"inserted"`
	Variants int  `json:"variants"`
	Updated  int  `json:"updated"`
	Skipped  int  `json:"skipped"`
	Failed   int  `json:"failed"`
}

func runSummary(run *db.FeedRun) summary {
	return summary{
		RunID:    run.RunID,
		Fetched:  run.Fetched,
		Dropped:  run.Dropped,
		Inserted: run.Inserted,
		Variants: run.Variants,
		Updated:  run.Updated,
		Skipped:  run.Skipped,
		Failed:   run.Failed,
	}
}
