package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jlcarr/WordSearchSolver/pkg/wordsearch"
)

const (
	maxUploadSize = 10 << 20 // 10 MiB
	maxJSONSize   = 1 << 20
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// imageAnalyzer extracts a puzzle from a photo.
type imageAnalyzer interface {
	AnalyzeImage(ctx context.Context, data []byte, mimeType string) (*Puzzle, error)
}

// rateLimiter is a simple per-IP token bucket rate limiter.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	rate     int           // tokens per interval
	interval time.Duration // refill interval
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

func newRateLimiter(ctx context.Context, rate int, interval time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*bucket),
		rate:     rate,
		interval: interval,
	}
	go rl.janitor(ctx)
	return rl
}

// janitor drops visitors idle for five minutes until ctx is done.
func (rl *rateLimiter) janitor(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, b := range rl.visitors {
				if time.Since(b.lastSeen) > 5*time.Minute {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &bucket{tokens: rl.rate - 1, lastSeen: time.Now()}
		return true
	}

	// Refill tokens based on elapsed time.
	refill := int(time.Since(b.lastSeen) / rl.interval)
	if refill > 0 {
		b.tokens = min(b.tokens+refill*rl.rate, rl.rate)
		b.lastSeen = time.Now()
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// clientIP strips the port from the request's remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Server is the HTTP API.
type Server struct {
	mux      *http.ServeMux
	store    *Store
	analyzer imageAnalyzer
	sse      *Broadcaster
	uploadRL *rateLimiter
	selectRL *rateLimiter
	logger   *slog.Logger
}

// NewServer creates a configured HTTP server. analyzer may be nil, which
// disables photo uploads. Background work stops when ctx is done.
func NewServer(ctx context.Context, store *Store, analyzer imageAnalyzer, logger *slog.Logger) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		store:    store,
		analyzer: analyzer,
		sse:      NewBroadcaster(),
		uploadRL: newRateLimiter(ctx, 5, time.Minute),  // 5 uploads/min per IP
		selectRL: newRateLimiter(ctx, 60, time.Second), // 60 selections/sec per IP
		logger:   logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// Puzzle API
	s.mux.HandleFunc("POST /api/puzzles", s.handleCreatePuzzle)
	s.mux.HandleFunc("POST /api/puzzles/image", s.handleUploadPuzzle)
	s.mux.HandleFunc("GET /api/puzzles", s.handleListPuzzles)
	s.mux.HandleFunc("GET /api/puzzles/{id}", s.handleGetPuzzle)
	s.mux.HandleFunc("POST /api/puzzles/{id}/solve", s.handleSolvePuzzle)

	// Session API
	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("POST /api/sessions/{id}/join", s.handleJoinSession)
	s.mux.HandleFunc("POST /api/sessions/{id}/select", s.handleSelect)
	s.mux.HandleFunc("GET /api/sessions/{id}/events", s.handleSessionEvents)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	s.mux.ServeHTTP(w, r)
}

// --- Puzzle handlers ---

// POST /api/puzzles: store a puzzle given as JSON.
func (s *Server) handleCreatePuzzle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title     string   `json:"title"`
		Rows      []string `json:"rows"`
		Words     []string `json:"words"`
		Wrap      bool     `json:"wrap"`
		Backwards *bool    `json:"backwards"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	p := &Puzzle{
		Title:     strings.TrimSpace(req.Title),
		Rows:      req.Rows,
		Words:     req.Words,
		Wrap:      req.Wrap,
		Backwards: req.Backwards == nil || *req.Backwards,
		Source:    "json",
	}
	if p.Words == nil {
		p.Words = []string{}
	}
	if err := p.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	s.store.SavePuzzle(p)
	s.logger.Info("Puzzle created", "id", p.ID, "source", p.Source, "words", len(p.Words))
	writeJSON(w, http.StatusCreated, p)
}

// POST /api/puzzles/image: extract a puzzle from a photo.
func (s *Server) handleUploadPuzzle(w http.ResponseWriter, r *http.Request) {
	if !s.uploadRL.allow(clientIP(r)) {
		jsonError(w, "too many requests, try again later", http.StatusTooManyRequests)
		return
	}

	if s.analyzer == nil {
		jsonError(w, "image analysis is not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonError(w, "image too large (max 10 MiB)", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, "field 'image' is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !allowedMIME[mimeType] {
		jsonError(w, "accepted formats: JPEG or PNG", http.StatusBadRequest)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "could not read image", http.StatusInternalServerError)
		return
	}

	p, err := s.analyzer.AnalyzeImage(r.Context(), imageData, mimeType)
	if err != nil {
		s.logger.Error("Image analysis failed", "error", err)
		jsonError(w, "could not read a puzzle from the image", http.StatusUnprocessableEntity)
		return
	}

	s.store.SavePuzzle(p)
	s.logger.Info("Puzzle created", "id", p.ID, "source", p.Source, "words", len(p.Words))
	writeJSON(w, http.StatusCreated, p)
}

// GET /api/puzzles: list all puzzles.
func (s *Server) handleListPuzzles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListPuzzles())
}

// GET /api/puzzles/{id}: get a single puzzle.
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	p := s.store.GetPuzzle(r.PathValue("id"))
	if p == nil {
		jsonError(w, "puzzle not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// POST /api/puzzles/{id}/solve: every placement of every word.
func (s *Server) handleSolvePuzzle(w http.ResponseWriter, r *http.Request) {
	p := s.store.GetPuzzle(r.PathValue("id"))
	if p == nil {
		jsonError(w, "puzzle not found", http.StatusNotFound)
		return
	}

	var req struct {
		Wrap      *bool `json:"wrap"`
		Backwards *bool `json:"backwards"`
		Workers   int   `json:"workers"`
	}
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	if req.Workers < 0 {
		jsonError(w, "workers must not be negative", http.StatusBadRequest)
		return
	}

	opts := p.Options()
	if req.Wrap != nil {
		opts.Wrap = *req.Wrap
	}
	if req.Backwards != nil {
		opts.Backwards = *req.Backwards
	}
	opts.Workers = req.Workers

	g, res, err := p.Solve(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Debug("Puzzle solved", "id", p.ID, "found", len(res), "placements", res.Count(), "wrap", opts.Wrap, "backwards", opts.Backwards)
	writeJSON(w, http.StatusOK, newSolution(g, p.Words, res, opts.Wrap))
}

// --- Session handlers ---

type sessionView struct {
	ID        string    `json:"id"`
	PuzzleID  string    `json:"puzzle_id"`
	CreatedAt time.Time `json:"created_at"`
	Completed bool      `json:"completed"`
	Watchers  int       `json:"watchers"`
	Puzzle    *Puzzle   `json:"puzzle,omitempty"`
	SessionState
}

func (s *Server) viewSession(session *Session) sessionView {
	return sessionView{
		ID:           session.ID,
		PuzzleID:     session.PuzzleID,
		CreatedAt:    session.CreatedAt,
		Completed:    session.Completed(),
		Watchers:     s.sse.ClientCount(session.ID),
		Puzzle:       s.store.GetPuzzle(session.PuzzleID),
		SessionState: session.Snapshot(),
	}
}

// POST /api/sessions: open a session on a puzzle.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PuzzleID string `json:"puzzle_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PuzzleID == "" {
		jsonError(w, "field 'puzzle_id' is required", http.StatusBadRequest)
		return
	}

	session, err := s.store.CreateSession(r.Context(), req.PuzzleID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("Session created", "id", session.ID, "puzzle", session.PuzzleID)
	writeJSON(w, http.StatusCreated, s.viewSession(session))
}

// GET /api/sessions: list all sessions, without their puzzles.
func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	sessions := s.store.ListSessions()
	list := make([]sessionView, 0, len(sessions))
	for _, session := range sessions {
		v := s.viewSession(session)
		v.Puzzle = nil
		list = append(list, v)
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /api/sessions/{id}: current session state.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session := s.store.GetSession(r.PathValue("id"))
	if session == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.viewSession(session))
}

// POST /api/sessions/{id}/join: join a session with a pseudo.
func (s *Server) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	session := s.store.GetSession(r.PathValue("id"))
	if session == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	var req struct {
		Pseudo string `json:"pseudo"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	pseudo := sanitizePseudo(req.Pseudo)
	if pseudo == "" {
		jsonError(w, "field 'pseudo' is required", http.StatusBadRequest)
		return
	}

	player := session.AddPlayer(pseudo)
	s.broadcast(session.ID, Event{Type: eventPlayerJoined, Data: *player})

	writeJSON(w, http.StatusOK, player)
}

// POST /api/sessions/{id}/select: check a drag from start to end.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if !s.selectRL.allow(clientIP(r)) {
		jsonError(w, "too many requests, try again later", http.StatusTooManyRequests)
		return
	}

	session := s.store.GetSession(r.PathValue("id"))
	if session == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	var req struct {
		Pseudo string          `json:"pseudo"`
		Start  wordsearch.Cell `json:"start"`
		End    wordsearch.Cell `json:"end"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	pseudo := sanitizePseudo(req.Pseudo)
	if pseudo == "" {
		jsonError(w, "field 'pseudo' is required", http.StatusBadRequest)
		return
	}

	sel, err := session.Select(pseudo, req.Start, req.End)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sel.Word == nil {
		writeJSON(w, http.StatusOK, map[string]any{"found": false})
		return
	}

	if sel.First {
		s.logger.Info("Word found", "session", session.ID, "word", sel.Word.Word, "pseudo", sel.Word.Pseudo)
		s.broadcast(session.ID, Event{Type: eventWordFound, Data: *sel.Word})
	}
	if sel.Completed {
		s.logger.Info("Session completed", "session", session.ID)
		s.broadcast(session.ID, Event{Type: eventCompleted, Data: session.Snapshot()})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"found": true,
		"first": sel.First,
		"word":  sel.Word,
	})
}

// GET /api/sessions/{id}/events: SSE stream.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	session := s.store.GetSession(r.PathValue("id"))
	if session == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	pseudo := sanitizePseudo(r.URL.Query().Get("pseudo"))

	s.sse.ServeSSE(w, r, session.ID, func() Event {
		return Event{Type: eventSessionState, Data: s.viewSession(session)}
	}, func() {
		if pseudo != "" {
			session.RemovePlayer(pseudo)
			s.broadcast(session.ID, Event{Type: eventPlayerLeft, Data: playerLeft{Pseudo: pseudo}})
		}
	})
}

// --- Helpers ---

func (s *Server) broadcast(sessionID string, evt Event) {
	if err := s.sse.Broadcast(sessionID, evt); err != nil {
		s.logger.Error("Broadcast failed", "session", sessionID, "type", evt.Type, "error", err)
	}
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var inputErr *wordsearch.InputError
	switch {
	case errors.As(err, &inputErr):
		jsonError(w, inputErr.Error(), http.StatusBadRequest)
	case errors.Is(err, errNotALine):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, errPuzzleNotFound):
		jsonError(w, "puzzle not found", http.StatusNotFound)
	default:
		s.logger.Error("Request failed", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// decodeOptionalJSON is decodeJSON for bodies that may be empty, however the
// client framed them. An empty body leaves v untouched.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizePseudo(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > 20 {
		s = string([]rune(s)[:20])
	}
	return s
}
