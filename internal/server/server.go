// Package server exposes the pond over HTTP and websocket.
// GET endpoints are public; account and save endpoints use bearer tokens.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ribbitworks/slimepond/internal/ambient"
	"github.com/ribbitworks/slimepond/internal/auth"
	"github.com/ribbitworks/slimepond/internal/behavior"
	"github.com/ribbitworks/slimepond/internal/chat"
	"github.com/ribbitworks/slimepond/internal/config"
	"github.com/ribbitworks/slimepond/internal/creature"
	"github.com/ribbitworks/slimepond/internal/engine"
	"github.com/ribbitworks/slimepond/internal/llm"
	"github.com/ribbitworks/slimepond/internal/persistence"
	"github.com/ribbitworks/slimepond/internal/relationship"
	"github.com/ribbitworks/slimepond/internal/store"
)

const maxCreatures = 12

// Server wires every subsystem behind the HTTP API.
type Server struct {
	Store   *store.Store
	Factory *creature.Factory
	Sched   *behavior.Scheduler
	Orch    *chat.Orchestrator
	Eng     *engine.Engine
	DB      *persistence.DB
	Auth    *auth.Service
	Clock   *ambient.Clock
	LLM     *llm.Client
	Hub     *Hub
	Cfg     config.Config

	started time.Time
}

// Handler builds the routing table. Split from Start so tests can drive
// the mux with httptest.
func (s *Server) Handler() http.Handler {
	s.started = time.Now()
	chatLimiter := NewRateLimiter(s.Cfg.ChatPerMin, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/ambient", s.handleAmbient)

	mux.HandleFunc("/api/v1/creatures", s.handleCreatures)
	mux.HandleFunc("/api/v1/creature/", s.handleCreatureRoutes(chatLimiter))
	mux.HandleFunc("/api/v1/clear", s.handleClear)

	mux.HandleFunc("/api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("/api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("/api/v1/save", s.handleSave)
	mux.HandleFunc("/api/v1/load", s.handleLoad)

	mux.HandleFunc("/ws", s.Hub.ServeWS)

	return s.corsMiddleware(mux)
}

// Start serves the API in a goroutine and returns the http.Server for
// graceful shutdown.
func (s *Server) Start() *http.Server {
	srv := &http.Server{Addr: s.Cfg.Addr, Handler: s.Handler()}
	slog.Info("HTTP API starting", "addr", s.Cfg.Addr, "llm", s.LLM.Enabled())

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// Snapshot is what the hub broadcasts every tick and what /load returns.
func (s *Server) Snapshot() map[string]any {
	snap := s.Store.Snapshot()
	cond := s.Clock.Now()
	return map[string]any{
		"creatures":        snap.Creatures,
		"activeCreatureId": snap.ActiveCreatureID,
		"ambient": map[string]any{
			"phase":      cond.Phase,
			"cloudiness": cond.Cloudiness,
		},
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowed := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range s.Cfg.CORSOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowed[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Store.Snapshot()
	byType := map[creature.Type]int{}
	for _, c := range snap.Creatures {
		byType[c.Type]++
	}

	writeJSON(w, map[string]any{
		"name":             "Slimepond",
		"uptime":           humanize.Time(s.started),
		"creatures":        len(snap.Creatures),
		"byType":           byType,
		"activeCreatureId": snap.ActiveCreatureID,
		"llm":              s.LLM.Enabled(),
		"wsClients":        s.Hub.ClientCount(),
		"sceneWidth":       s.Cfg.SceneWidth,
	})
}

func (s *Server) handleAmbient(w http.ResponseWriter, r *http.Request) {
	cond := s.Clock.Now()
	writeJSON(w, map[string]any{
		"phase":      cond.Phase,
		"cloudiness": cond.Cloudiness,
		"flavor":     s.Clock.Flavor(),
	})
}

// handleCreatures serves GET (list) and POST (spawn).
func (s *Server) handleCreatures(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap := s.Store.Snapshot()
		writeJSON(w, map[string]any{
			"creatures":        snap.Creatures,
			"activeCreatureId": snap.ActiveCreatureID,
		})

	case http.MethodPost:
		var req struct {
			Type     string  `json:"type"`
			Color    string  `json:"color,omitempty"`
			Position float64 `json:"position,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if len(s.Store.IDs()) >= maxCreatures {
			http.Error(w, fmt.Sprintf("pond is full (max %d creatures)", maxCreatures), http.StatusConflict)
			return
		}

		c := s.Factory.Spawn(creature.Type(req.Type), creature.Color(req.Color), req.Position)
		s.Store.Dispatch(store.Intent{Kind: store.AddCreature, Creature: c})
		s.Sched.Track(c.ID, time.Now())
		slog.Info("creature spawned", "id", c.ID, "type", c.Type, "color", c.Color)

		got, _ := s.Store.Get(c.ID)
		writeJSON(w, got)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleCreatureRoutes dispatches /api/v1/creature/{id}[/{action}].
func (s *Server) handleCreatureRoutes(chatLimiter *RateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/creature/")
		id, action, _ := strings.Cut(rest, "/")
		if id == "" {
			http.Error(w, "creature id required", http.StatusBadRequest)
			return
		}

		switch action {
		case "":
			s.handleCreature(w, r, id)
		case "select":
			s.handleSelect(w, r, id)
		case "deselect":
			s.handleDeselect(w, r, id)
		case "chat":
			RateLimitMiddleware(chatLimiter, func(w http.ResponseWriter, r *http.Request) {
				s.handleChat(w, r, id)
			})(w, r)
		case "name":
			s.handleName(w, r, id)
		case "name/suggest", "suggest-name":
			s.handleSuggestName(w, r, id)
		case "action":
			s.handleAction(w, r, id)
		case "conversation":
			s.handleConversation(w, r, id)
		default:
			http.Error(w, "unknown creature endpoint", http.StatusNotFound)
		}
	}
}

// handleCreature serves GET (detail) and DELETE (remove).
func (s *Server) handleCreature(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		c, ok := s.Store.Get(id)
		if !ok {
			http.Error(w, "creature not found", http.StatusNotFound)
			return
		}
		rel := c.Relationship
		writeJSON(w, map[string]any{
			"creature": c,
			"relationship": map[string]any{
				"score":    relationship.Score(rel.Affection, rel.Trust),
				"level":    rel.Level,
				"progress": relationship.ProgressToNextLevel(rel.Affection, rel.Trust),
				"advice":   relationship.Advice(rel.Affection, rel.Trust, rel.TotalInteractions),
			},
		})

	case http.MethodDelete:
		if _, ok := s.Store.Get(id); !ok {
			http.Error(w, "creature not found", http.StatusNotFound)
			return
		}
		s.Store.Dispatch(store.Intent{Kind: store.RemoveCreature, CreatureID: id})
		s.Sched.Untrack(id)
		s.Orch.Forget(id)
		slog.Info("creature removed", "id", id)
		writeJSON(w, map[string]any{"removed": id})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.Store.Get(id); !ok {
		http.Error(w, "creature not found", http.StatusNotFound)
		return
	}
	s.Store.Dispatch(store.Intent{Kind: store.SetActive, CreatureID: id})
	s.Store.Dispatch(store.Intent{Kind: store.SetMode, CreatureID: id, Mode: creature.ModeUser})
	s.Store.Dispatch(store.Intent{Kind: store.TouchInteraction, CreatureID: id})
	writeJSON(w, map[string]any{"activeCreatureId": id})
}

func (s *Server) handleDeselect(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Store.ActiveID() == id {
		s.Store.Dispatch(store.Intent{Kind: store.SetActive, CreatureID: ""})
	}
	s.Store.Dispatch(store.Intent{Kind: store.SetMode, CreatureID: id, Mode: creature.ModeAuto})
	s.Store.Dispatch(store.Intent{Kind: store.HideAllBubbles})
	writeJSON(w, map[string]any{"activeCreatureId": s.Store.ActiveID()})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, ok := s.Orch.HandleUserMessage(ctx, id, req.Text)
	if !ok {
		http.Error(w, "creature not found or cannot talk", http.StatusNotFound)
		return
	}
	writeJSON(w, result)
}

// handleName serves POST (rename). The empty-name case falls back to a
// suggestion so the rename button always lands on something.
func (s *Server) handleName(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if _, ok := s.Store.Get(id); !ok {
		http.Error(w, "creature not found", http.StatusNotFound)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		suggested, ok := s.Orch.SuggestName(r.Context(), id)
		if !ok {
			http.Error(w, "creature not found", http.StatusNotFound)
			return
		}
		name = suggested
	}
	s.Orch.Rename(id, name)
	writeJSON(w, map[string]any{"id": id, "name": name})
}

func (s *Server) handleSuggestName(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name, ok := s.Orch.SuggestName(r.Context(), id)
	if !ok {
		http.Error(w, "creature not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{"id": id, "name": name})
}

// handleAction runs a menu command on a selected creature. Capability
// checks live in the reducer; an illegal action is simply a no-op.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Action string `json:"action"`
		Color  string `json:"color,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	c, ok := s.Store.Get(id)
	if !ok {
		http.Error(w, "creature not found", http.StatusNotFound)
		return
	}

	switch req.Action {
	case "jump":
		s.Store.Dispatch(store.Intent{Kind: store.SetBehavior, CreatureID: id, Behavior: creature.BehaviorJump})
		s.Store.Dispatch(store.Intent{Kind: store.SetJumping, CreatureID: id, Flag: true})
	case "sleep":
		s.Store.Dispatch(store.Intent{Kind: store.SetBehavior, CreatureID: id, Behavior: creature.BehaviorSleep})
		s.Store.Dispatch(store.Intent{Kind: store.SetSleeping, CreatureID: id, Flag: true})
	case "wake":
		s.Store.Dispatch(store.Intent{Kind: store.SetSleeping, CreatureID: id, Flag: false})
		s.Store.Dispatch(store.Intent{Kind: store.SetBehavior, CreatureID: id, Behavior: creature.BehaviorIdle})
	case "glow":
		s.Store.Dispatch(store.Intent{Kind: store.SetGlowing, CreatureID: id, Flag: !c.IsGlowing})
	case "changeColor":
		color := creature.Color(req.Color)
		if color == "" {
			color = nextColor(c)
		}
		s.Store.Dispatch(store.Intent{Kind: store.SetColor, CreatureID: id, Color: color})
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	s.Store.Dispatch(store.Intent{Kind: store.TouchInteraction, CreatureID: id})
	got, _ := s.Store.Get(id)
	writeJSON(w, got)
}

// nextColor cycles through the palette for the creature's type.
func nextColor(c *creature.Creature) creature.Color {
	colors := creature.Colors(c.Type)
	for i, col := range colors {
		if col == c.Color {
			return colors[(i+1)%len(colors)]
		}
	}
	return creature.DefaultColor(c.Type)
}

// handleConversation serves GET (history) and DELETE (clear).
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request, id string) {
	c, ok := s.Store.Get(id)
	if !ok {
		http.Error(w, "creature not found", http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, map[string]any{"id": id, "messages": c.ConversationHistory})
	case http.MethodDelete:
		s.Store.Dispatch(store.Intent{Kind: store.ClearConversation, CreatureID: id})
		writeJSON(w, map[string]any{"id": id, "cleared": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	for _, id := range s.Store.IDs() {
		s.Sched.Untrack(id)
		s.Orch.Forget(id)
	}
	s.Store.Dispatch(store.Intent{Kind: store.ClearAll})
	writeJSON(w, map[string]any{"cleared": true})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.handleCredentials(w, r, s.Auth.Register)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.handleCredentials(w, r, s.Auth.Login)
}

func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request, fn func(username, password string) (string, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	token, err := fn(req.Username, req.Password)
	if err != nil {
		slog.Warn("auth failed", "username", req.Username, "error", err)
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]any{"token": token})
}

// userID resolves the save slot for a request. Anonymous callers share
// the local slot.
func (s *Server) userID(r *http.Request) string {
	token := auth.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return persistence.AnonymousUser
	}
	id, err := s.Auth.Verify(token)
	if err != nil {
		return persistence.AnonymousUser
	}
	return id
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := s.userID(r)
	snap := s.Store.Snapshot()
	payload := persistence.SavePayload{
		Creatures:        snap.Creatures,
		ActiveCreatureID: snap.ActiveCreatureID,
	}
	if err := s.DB.SaveState(userID, payload, s.Store.Fingerprint()); err != nil {
		slog.Error("manual save failed", "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"saved": true, "creatures": len(snap.Creatures)})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := s.userID(r)
	payload, found, err := s.DB.LoadState(userID)
	if err != nil {
		slog.Error("load failed", "error", err)
		http.Error(w, "load failed", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "no save found", http.StatusNotFound)
		return
	}

	for _, id := range s.Store.IDs() {
		s.Sched.Untrack(id)
		s.Orch.Forget(id)
	}
	s.Store.Restore(store.State{
		Creatures:        payload.Creatures,
		ActiveCreatureID: payload.ActiveCreatureID,
	})
	now := time.Now()
	for _, id := range s.Store.IDs() {
		s.Sched.Track(id, now)
	}
	s.Eng.SetUser(userID)
	slog.Info("save restored", "user", userID, "creatures", len(payload.Creatures))

	writeJSON(w, s.Snapshot())
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
