package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"PortfolioAI/app/chat"
)

const (
	defaultAddr     = ":8080"
	maxRequestBytes = 64 << 10
)

var _ Interface = &HTTPClient{}

type HTTPClient struct {
	Client
	addr     string
	server   *http.Server
	listener net.Listener
	limiter  *RateLimiter
	validate *validator.Validate
}

type chatRequest struct {
	Message string `json:"message"`
	chat.Options
}

func NewHTTPClient(addr string, limiter *RateLimiter) *HTTPClient {
	if addr == "" {
		addr = defaultAddr
	}
	if limiter == nil {
		limiter = NewRateLimiter(defaultRatePerMinute, defaultBurst)
	}
	return &HTTPClient{
		addr:     addr,
		limiter:  limiter,
		validate: validator.New(),
	}
}

// NewHTTPClientFromConfig reads addr, rate_per_minute and burst.
func NewHTTPClientFromConfig(cfg map[string]string) (*HTTPClient, error) {
	rpm, err := intOption(cfg, "rate_per_minute", defaultRatePerMinute)
	if err != nil {
		return nil, err
	}
	burst, err := intOption(cfg, "burst", defaultBurst)
	if err != nil {
		return nil, err
	}
	return NewHTTPClient(cfg["addr"], NewRateLimiter(rpm, burst)), nil
}

func intOption(cfg map[string]string, key string, def int) (int, error) {
	raw, ok := cfg[key]
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func (c *HTTPClient) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", c.handleChat)
	mux.HandleFunc("GET /healthz", c.handleHealth)
	return loggingMiddleware(mux)
}

func (c *HTTPClient) Subscribe(svc Service, health Pinger) error {
	c.bind(svc, health)

	ln, err := net.Listen("tcp", c.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", c.addr, err)
	}
	c.listener = ln
	c.server = &http.Server{
		Handler:      c.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		if err := c.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("❌ HTTP server stopped: %v", err)
		}
	}()
	log.Printf("🌐 HTTP client listening on %s", ln.Addr())
	return nil
}

// Addr is the bound address once Subscribe has succeeded.
func (c *HTTPClient) Addr() string {
	if c.listener == nil {
		return c.addr
	}
	return c.listener.Addr().String()
}

func (c *HTTPClient) Close() error {
	if c.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.server.Shutdown(ctx)
}

func (c *HTTPClient) handleChat(w http.ResponseWriter, r *http.Request) {
	if !c.limiter.Allow(clientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, chat.QueryResult{
			Error:      "Too many requests.",
			Suggestion: "Please wait a moment before asking again.",
		})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, chat.QueryResult{Error: "Invalid request body.", Details: err.Error()})
		return
	}
	if err := c.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, chat.QueryResult{Error: "Invalid request options.", Details: err.Error()})
		return
	}

	result := c.service.HandleQuery(r.Context(), req.Message, req.Options)
	writeJSON(w, statusFor(result), result)
}

func statusFor(result chat.QueryResult) int {
	switch {
	case result.Success, result.IsFiltered:
		return http.StatusOK
	case result.Suggestion != "":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (c *HTTPClient) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "llm": "ok"}
	code := http.StatusOK
	if c.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := c.health.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["llm"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, status)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("⚠️ Error writing response: %v", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("ℹ️ %s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
