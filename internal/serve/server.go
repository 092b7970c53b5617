package serve

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"techblog/internal/app"
	"techblog/internal/domain/config"
	"techblog/internal/logging"
	"techblog/internal/render"
)

type Options struct {
	Config   config.Config
	Composer *app.Composer
	Renderer render.Renderer
	Status   StatusSource
	Logger   logging.Logger
}

// Server wires the handlers into gin and owns the live reload watcher.
type Server struct {
	cfg     config.Config
	engine  *gin.Engine
	hub     *Hub
	watcher *Watcher
	log     logging.Logger
}

func New(opt Options) (*Server, error) {
	log := logging.OrNoOp(opt.Logger)

	var hub *Hub
	var watcher *Watcher
	if opt.Config.Serve.LiveReload {
		hub = NewHub()
		w, err := NewWatcher(hub, []string{opt.Config.Content.PostsDir, opt.Config.Content.PagesDir}, log)
		if err != nil {
			return nil, err
		}
		watcher = w
	}

	engine := NewEngine(NewHandler(opt.Composer, opt.Renderer, opt.Status, hub, log), log)
	return &Server{
		cfg:     opt.Config,
		engine:  engine,
		hub:     hub,
		watcher: watcher,
		log:     log,
	}, nil
}

// NewEngine builds the gin router without binding a listener.
func NewEngine(h *Handler, logger logging.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger(logger))
	_ = engine.SetTrustedProxies([]string{"127.0.0.1"})
	h.RegisterRoutes(engine)
	return engine
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = s.cfg.Serve.Addr
	}
	if s.watcher != nil {
		go s.watcher.Run(ctx)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		// SSE streams end with ctx so Shutdown does not wait on them.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serve: listening", "addr", addr, "live_reload", s.watcher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("serve: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
