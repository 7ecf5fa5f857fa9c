package server

import (
	"net/http"
	"strings"
)

func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.HandleStats(w, r)
	})

	mux.HandleFunc("/decisions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.HandleListDecisions(w, r)
	})

	mux.HandleFunc("/words/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		switch strings.TrimPrefix(strings.TrimSuffix(r.URL.Path, "/"), "/words/") {
		case "ignored":
			s.HandleUpdateWords(w, r, "ignored")
		case "command":
			s.HandleUpdateWords(w, r, "command")
		default:
			http.NotFound(w, r)
		}
	})

	mux.HandleFunc("/streams/", func(w http.ResponseWriter, r *http.Request) {
		// /streams/{id}/token
		path := strings.TrimSuffix(r.URL.Path, "/")
		rest := strings.TrimPrefix(path, "/streams/")
		parts := strings.Split(rest, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] != "token" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.HandleMintStreamToken(w, r, parts[0])
	})

	mux.HandleFunc("/ws/asr", s.HandleASRWS)

	return mux
}
