package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"bargein/interrupt/internal/auth"
	"bargein/interrupt/internal/engine"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Stats())
}

func (s *Server) HandleListDecisions(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		writeJSON(w, http.StatusOK, map[string]any{"decisions": []any{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"decisions": s.hist.List()})
}

type updateWordsRequest struct {
	Words []string `json:"words"`
}

// HandleUpdateWords replaces one of the two word lists. which is "ignored"
// or "command".
func (s *Server) HandleUpdateWords(w http.ResponseWriter, r *http.Request, which string) {
	var req updateWordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	var err error
	if which == "command" {
		err = s.eng.UpdateCommandWords(req.Words)
	} else {
		err = s.eng.UpdateIgnoredWords(req.Words)
	}
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"updated": which, "count": len(req.Words)})
	case errors.Is(err, engine.ErrClosed):
		http.Error(w, "engine closed", http.StatusServiceUnavailable)
	case errors.Is(err, engine.ErrEmptyWordList):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) HandleMintStreamToken(w http.ResponseWriter, r *http.Request, streamID string) {
	if s.cfg.Stream.TokenSecret == "" {
		http.Error(w, "stream auth not configured", http.StatusServiceUnavailable)
		return
	}
	exp := time.Now().Add(time.Duration(s.cfg.Stream.TokenExpMin) * time.Minute).Unix()
	token := auth.GenerateStreamToken(s.cfg.Stream.TokenSecret, streamID, exp)
	writeJSON(w, http.StatusOK, map[string]any{
		"stream_id": streamID,
		"token":     token,
		"exp":       exp,
	})
}
