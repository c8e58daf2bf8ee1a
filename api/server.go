// Package api provides the HTTP server for the treasury yield dashboard.
//
// It serves the dashboard page, JSON endpoints for the panel, curve,
// inversion matrix and headlines, SVG chart endpoints, and a WebSocket
// channel for date selection and refresh notifications.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/treasurycurve/internal/config"
	"github.com/seenimoa/treasurycurve/internal/dashboard"
	"github.com/seenimoa/treasurycurve/internal/infra"
	"github.com/seenimoa/treasurycurve/internal/report"
	"github.com/seenimoa/treasurycurve/internal/scheduler"
	"github.com/seenimoa/treasurycurve/internal/yieldcurve"
	"github.com/seenimoa/treasurycurve/pkg/models"
	"github.com/seenimoa/treasurycurve/pkg/utils"
	"github.com/seenimoa/treasurycurve/web"
)

// Version is reported by /health. Set by the CLI at startup.
var Version = "dev"

// StatusReporter reports the cache warmer state. *scheduler.Scheduler
// satisfies it.
type StatusReporter interface {
	Status() scheduler.Status
}

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	cfg       *config.Config
	boards    map[string]*dashboard.Service // keyed by provider name
	primary   string
	warmer    StatusReporter
	wsHub     *WSHub
	static    fs.FS
	serveUI   bool // when true, serve the dashboard page at /
	startedAt time.Time
}

// NewServer creates a configured server. boards maps provider names to
// dashboard services; the one named by cfg.Data.Provider answers requests
// without a provider parameter.
func NewServer(cfg *config.Config, boards map[string]*dashboard.Service) (*Server, error) {
	if _, ok := boards[cfg.Data.Provider]; !ok {
		return nil, fmt.Errorf("no dashboard for provider %q", cfg.Data.Provider)
	}

	srv := &Server{
		cfg:       cfg,
		boards:    boards,
		primary:   cfg.Data.Provider,
		wsHub:     NewWSHub(),
		static:    web.StaticFS(),
		serveUI:   true,
		startedAt: time.Now(),
	}

	srv.router = srv.buildRouter()
	return srv, nil
}

// SetServeUI controls whether the dashboard page and its assets are served.
// Must be called before ListenAndServe.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// SetWarmer attaches the cache warmer whose state /status reports.
func (s *Server) SetWarmer(w StatusReporter) {
	s.warmer = w
}

// Hub returns the WebSocket hub, for wiring broadcasters.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	}
	infra.Infof("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		// Yield data
		r.Get("/panel", s.handlePanel)
		r.Get("/dates", s.handleDates)
		r.Get("/curve", s.handleCurve)
		r.Get("/matrix", s.handleMatrix)
		r.Get("/view", s.handleView)
		r.Post("/refresh", s.handleRefresh)

		// Charts
		r.Get("/chart/curve.svg", s.handleCurveSVG)
		r.Get("/chart/matrix.svg", s.handleMatrixSVG)

		// Headlines
		r.Get("/headlines", s.handleHeadlines)

		// Config
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	if s.serveUI {
		r.Get("/", s.handlePage)
		r.Handle("/static/*", http.StripPrefix("/static/", staticHandler(s.static)))
	}

	return r
}

// staticHandler serves the embedded assets with a short cache lifetime.
func staticHandler(assets fs.FS) http.Handler {
	fileServer := http.FileServerFS(assets)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		fileServer.ServeHTTP(w, r)
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PanelInfo describes a panel without its rows.
type PanelInfo struct {
	Source    string    `json:"source"`
	Codes     []string  `json:"codes"`
	Rows      int       `json:"rows"`
	Oldest    string    `json:"oldest"`
	Latest    string    `json:"latest"`
	FetchedAt time.Time `json:"fetched_at"`
	Dropped   int       `json:"dropped"`
}

// StatusInfo is the /status payload.
type StatusInfo struct {
	Version   string            `json:"version"`
	Provider  string            `json:"provider"`
	Providers []string          `json:"providers"`
	Uptime    string            `json:"uptime"`
	WSClients int               `json:"ws_clients"`
	Warmer    *scheduler.Status `json:"warmer,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":   "ok",
			"version":  Version,
			"provider": s.primary,
			"time_et":  utils.FormatDateTimeET(utils.NowET()),
		},
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	info := StatusInfo{
		Version:   Version,
		Provider:  s.primary,
		Providers: s.providerNames(),
		Uptime:    report.FormatDuration(time.Since(s.startedAt)),
		WSClients: s.wsHub.ClientCount(),
	}
	if s.warmer != nil {
		st := s.warmer.Status()
		info.Warmer = &st
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: info})
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	board, ok := s.board(w, r)
	if !ok {
		return
	}
	panel, err := board.Panel(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	if r.URL.Query().Get("rows") == "true" {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: panel})
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: panelInfo(panel)})
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	board, ok := s.board(w, r)
	if !ok {
		return
	}
	dates, err := board.Dates(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = utils.FormatDate(d)
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: out})
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	board, asOf, ok := s.selection(w, r)
	if !ok {
		return
	}
	curve, err := board.Curve(r.Context(), asOf)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: curve})
}

func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	board, asOf, ok := s.selection(w, r)
	if !ok {
		return
	}
	m, err := board.Matrix(r.Context(), asOf)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: m})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	board, asOf, ok := s.selection(w, r)
	if !ok {
		return
	}
	v, err := board.View(r.Context(), asOf)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: v})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	board, ok := s.board(w, r)
	if !ok {
		return
	}
	panel, err := board.Refresh(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	s.wsHub.Broadcast(scheduler.EventPanelRefreshed, scheduler.NewRefreshedEvent(panel))
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: panelInfo(panel)})
}

func (s *Server) handleCurveSVG(w http.ResponseWriter, r *http.Request) {
	board, asOf, ok := s.selection(w, r)
	if !ok {
		return
	}
	curve, err := board.Curve(r.Context(), asOf)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeSVG(w, report.YieldCurveChart(curve, report.DefaultChartConfig()))
}

func (s *Server) handleMatrixSVG(w http.ResponseWriter, r *http.Request) {
	board, asOf, ok := s.selection(w, r)
	if !ok {
		return
	}
	m, err := board.Matrix(r.Context(), asOf)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeSVG(w, report.InversionHeatmap(m, report.DefaultHeatmapConfig()))
}

func (s *Server) handleHeadlines(w http.ResponseWriter, r *http.Request) {
	board, ok := s.board(w, r)
	if !ok {
		return
	}
	hs, err := board.Headlines(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if hs == nil {
		hs = []models.Headline{}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: hs})
}

// handlePage renders the dashboard. The date comes from ?index= (as-of),
// ?slider= (position, oldest first) or ?date=YYYY-MM-DD.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	board, asOf, ok := s.selection(w, r)
	if !ok {
		return
	}
	v, err := board.View(r.Context(), asOf)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	cfg := report.DefaultPageConfig()
	cfg.WindowYears = board.WindowYears()

	var buf bytes.Buffer
	if err := report.RenderPage(&buf, v, cfg); err != nil {
		infra.Errorf("render page: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

// ============================================================
// Selection helpers
// ============================================================

// board resolves the ?provider= parameter. Errors are written to w.
func (s *Server) board(w http.ResponseWriter, r *http.Request) (*dashboard.Service, bool) {
	name := r.URL.Query().Get("provider")
	if name == "" {
		name = s.primary
	}
	b, ok := s.boards[name]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown provider %q", name))
		return nil, false
	}
	return b, true
}

// selection resolves the provider and the as-of index of a request.
func (s *Server) selection(w http.ResponseWriter, r *http.Request) (*dashboard.Service, int, bool) {
	b, ok := s.board(w, r)
	if !ok {
		return nil, 0, false
	}
	asOf, err := resolveIndex(r.Context(), b, r)
	if err != nil {
		writeErr(w, err)
		return nil, 0, false
	}
	return b, asOf, true
}

// errBadParam marks a malformed query parameter.
type errBadParam struct {
	name, value string
}

func (e *errBadParam) Error() string {
	return fmt.Sprintf("invalid %s %q", e.name, e.value)
}

// resolveIndex reads the as-of index from index, slider or date, in that
// order. No parameter selects the most recent row.
func resolveIndex(ctx context.Context, b *dashboard.Service, r *http.Request) (int, error) {
	q := r.URL.Query()
	if v := q.Get("index"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, &errBadParam{"index", v}
		}
		return n, nil
	}
	if v := q.Get("slider"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, &errBadParam{"slider", v}
		}
		panel, err := b.Panel(ctx)
		if err != nil {
			return 0, err
		}
		return dashboard.IndexFromSlider(n, panel.Len()), nil
	}
	if v := q.Get("date"); v != "" {
		d, err := utils.ParseDate(v)
		if err != nil {
			return 0, &errBadParam{"date", v}
		}
		return b.IndexForDate(ctx, d)
	}
	return 0, nil
}

func (s *Server) providerNames() []string {
	names := make([]string, 0, len(s.boards))
	for name := range s.boards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func panelInfo(p *models.YieldPanel) PanelInfo {
	return PanelInfo{
		Source:    p.Source,
		Codes:     p.Codes,
		Rows:      p.Len(),
		Oldest:    utils.FormatDate(p.Oldest()),
		Latest:    utils.FormatDate(p.Latest()),
		FetchedAt: p.FetchedAt,
		Dropped:   p.Dropped,
	}
}

// ============================================================
// Response helpers
// ============================================================

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		outOfRange *yieldcurve.ErrIndexOutOfRange
		badParam   *errBadParam
		unknown    *yieldcurve.ErrUnknownMaturity
		source     *yieldcurve.ErrDataSource
	)
	switch {
	case errors.As(err, &outOfRange), errors.As(err, &badParam), errors.As(err, &unknown):
		return http.StatusBadRequest
	case errors.As(err, &source):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		infra.Errorf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

func writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		infra.Errorf("request failed: %v", err)
	}
	writeError(w, status, err.Error())
}

func writeSVG(w http.ResponseWriter, svg string) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(svg)) //nolint:errcheck
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
}

// Run starts the hub event loop.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client; it misses this message
					infra.Debugf("ws: dropped %s for slow client", msg.Type)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a typed message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msgType string, data any) {
	h.Send(WSMessage{Type: msgType, Data: data})
}

// Send queues msg for every client. The message is dropped if the
// broadcast channel is full.
func (h *WSHub) Send(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// Drop message if broadcast channel is full
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	h.unregister <- client
}

// reply queues msg for this client only. It reports false once the hub
// has closed the client.
func (c *WSClient) reply(msg WSMessage) bool {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return false
	}
	select {
	case c.send <- msg:
	default:
		infra.Debugf("ws: dropped %s reply for slow client", msg.Type)
	}
	return true
}
