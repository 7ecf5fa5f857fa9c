// Package server exposes the engine over a websocket ingest endpoint for the
// upstream recognizer plus a small HTTP admin API.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	ws "nhooyr.io/websocket"

	"bargein/interrupt/internal/auth"
	"bargein/interrupt/internal/config"
	"bargein/interrupt/internal/engine"
	"bargein/interrupt/internal/history"
	"bargein/interrupt/internal/types"
)

// Message is the JSON envelope spoken on the recognizer websocket.
//
// Inbound types: "transcript_final" (payload: transcript, confidence) and
// "vad_state" (payload: speaking). Outbound: "decision" after each
// transcript, "stop_tts" on barge-in.
type Message struct {
	Type     string         `json:"type"`
	TsMs     int64          `json:"ts_ms,omitempty"`
	StreamID string         `json:"stream_id,omitempty"`
	Seq      int64          `json:"seq,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
}

type Server struct {
	cfg  config.Config
	eng  *engine.Engine
	hist *history.Store
	reg  *Registry
	log  zerolog.Logger
}

func New(cfg config.Config, eng *engine.Engine, hist *history.Store, reg *Registry, log zerolog.Logger) *Server {
	return &Server{
		cfg:  cfg,
		eng:  eng,
		hist: hist,
		reg:  reg,
		log:  log.With().Str("component", "server").Logger(),
	}
}

// StopNotifier delivers the stop-speaking side effect to connected streams.
// It satisfies engine.Agent.
type StopNotifier struct {
	Reg *Registry
}

func (n *StopNotifier) StopSpeaking(ctx context.Context) error {
	return n.Reg.Broadcast(ctx, Message{
		Type:    "stop_tts",
		TsMs:    time.Now().UnixMilli(),
		Payload: map[string]any{"reason": "barge_in"},
	})
}

// HandleASRWS accepts a recognizer websocket and feeds its events into the
// engine, replying with the decision for each final transcript.
func (s *Server) HandleASRWS(w http.ResponseWriter, r *http.Request) {
	streamID := r.URL.Query().Get("stream_id")
	if streamID == "" {
		http.Error(w, "missing stream_id", http.StatusBadRequest)
		return
	}
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}
	if s.cfg.Stream.TokenSecret == "" {
		http.Error(w, "stream auth not configured", http.StatusUnauthorized)
		return
	}
	token := strings.TrimPrefix(authz, "Bearer ")
	if _, _, err := auth.ValidateStreamToken(s.cfg.Stream.TokenSecret, token, streamID, time.Now(), s.cfg.Stream.TokenSkewSecs); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	c, err := ws.Accept(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("ws accept")
		return
	}
	s.reg.Replace(streamID, c)
	s.log.Info().Str("stream_id", streamID).Msg("recognizer connected")

	ctx := r.Context()
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			break
		}
		if typ != ws.MessageText && typ != ws.MessageBinary {
			continue
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Warn().Err(err).Str("stream_id", streamID).Msg("invalid message")
			continue
		}
		if closed := s.dispatch(ctx, c, streamID, msg); closed {
			_ = c.Close(ws.StatusGoingAway, "engine closed")
			s.reg.Remove(streamID)
			return
		}
	}
	_ = c.Close(ws.StatusNormalClosure, "done")
	s.reg.Remove(streamID)
	s.log.Info().Str("stream_id", streamID).Msg("recognizer disconnected")
}

// dispatch routes one inbound message. Returns true when the engine has shut
// down and the connection should be closed.
func (s *Server) dispatch(ctx context.Context, c *ws.Conn, streamID string, msg Message) bool {
	switch msg.Type {
	case "transcript_final":
		ev := types.TranscriptionEvent{
			Transcript: asString(msg.Payload["transcript"]),
			Confidence: asFloat(msg.Payload["confidence"]),
			Timestamp:  time.Now().UTC(),
		}
		interrupt, err := s.eng.OnTranscriptionEvent(ctx, ev)
		if err != nil {
			return true
		}
		reply := Message{
			Type:     "decision",
			TsMs:     time.Now().UnixMilli(),
			StreamID: streamID,
			Seq:      msg.Seq,
			Payload:  map[string]any{"interrupt": interrupt},
		}
		if b, merr := json.Marshal(reply); merr == nil {
			if werr := c.Write(ctx, ws.MessageText, b); werr != nil {
				s.log.Warn().Err(werr).Str("stream_id", streamID).Msg("decision reply failed")
			}
		}
	case "vad_state":
		speaking, _ := msg.Payload["speaking"].(bool)
		if err := s.eng.OnVADStateChange(speaking); err != nil {
			return true
		}
	default:
		// Ignore unknown message types for forward compatibility.
	}
	return false
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case json.Number:
		f, _ := x.Float64()
		return f
	default:
		return 0
	}
}
