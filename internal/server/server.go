// Package server hosts the web bundle: an HTML entry file and its static
// assets under a base path, with every unmatched request sent back to the entry.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/langbench/internal/config"
)

func init() {
	_ = mime.AddExtensionType(".wasm", "application/wasm")
}

// Server serves the entry file and assets of one bundle.
type Server struct {
	cfg    config.ServerEnv
	base   string // BASE_URL without trailing slash, "/" for the root
	root   string
	entry  string
	router *gin.Engine

	mu   sync.Mutex
	srv  *http.Server
	addr string
}

// New checks that the entry file exists and builds the router.
func New(cfg config.ServerEnv) (*Server, error) {
	if err := config.ValidateBaseURL(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	root := cfg.Root
	if root == "" {
		root = "."
	}
	entryName := cfg.EntryFile
	if entryName == "" {
		entryName = "index.html"
	}
	entry := filepath.Join(root, entryName)
	info, err := os.Stat(entry)
	if err != nil {
		return nil, fmt.Errorf("entry file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("entry file %s is not a regular file", entry)
	}

	s := &Server{
		cfg:   cfg,
		base:  normalizeBase(cfg.BaseURL),
		root:  root,
		entry: entry,
	}
	s.router = s.buildRouter()
	return s, nil
}

func normalizeBase(base string) string {
	if base == "/" {
		return base
	}
	return strings.TrimRight(base, "/")
}

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(gin.Recovery(), requestLogger())

	r.GET(s.base, s.handleIndex)
	r.HEAD(s.base, s.handleIndex)
	if s.base != "/" {
		r.GET(s.base+"/", s.handleIndex)
		r.HEAD(s.base+"/", s.handleIndex)
	}
	r.NoRoute(s.handleFallback)
	return r
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening. Returns the actual address.
func (s *Server) Start() (string, error) {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", s.cfg.Addr(), err)
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.srv = &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	srv := s.srv
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
		}
	}()

	slog.Info("server started", "addr", s.addr, "base_url", s.base, "root", s.root)
	return s.addr, nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// Addr returns the listening address after Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Server) handleIndex(c *gin.Context) {
	s.serveFile(c, s.entry)
}

// handleFallback serves assets below the base path and redirects
// everything else to the base path.
func (s *Server) handleFallback(c *gin.Context) {
	if file, ok := s.assetPath(c.Request.Method, c.Request.URL.Path); ok {
		s.serveFile(c, file)
		return
	}
	c.Redirect(http.StatusFound, s.cfg.BaseURL)
}

// assetPath maps a request path to a regular file under the serve root.
func (s *Server) assetPath(method, urlPath string) (string, bool) {
	if method != http.MethodGet && method != http.MethodHead {
		return "", false
	}
	prefix := s.base
	if prefix != "/" {
		prefix += "/"
	}
	rel, ok := strings.CutPrefix(urlPath, prefix)
	if !ok || rel == "" {
		return "", false
	}
	// Rooted clean strips any ".." segments before joining.
	clean := strings.TrimPrefix(path.Clean("/"+rel), "/")
	if clean == "" {
		return "", false
	}
	file := filepath.Join(s.root, filepath.FromSlash(clean))
	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return file, true
}

func (s *Server) serveFile(c *gin.Context, file string) {
	f, err := os.Open(file)
	if err != nil {
		slog.Error("open file", "file", file, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		slog.Error("stat file", "file", file, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if ct := mime.TypeByExtension(filepath.Ext(file)); ct != "" {
		c.Header("Content-Type", ct)
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}
