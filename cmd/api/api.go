package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"card_scraper/internal/config"
	"card_scraper/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// initDatabase establishes a connection and initializes the repository.
func initDatabase(ctx context.Context, cfg *config.Config) (repository.CardRepository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, eris.Wrap(err, "could not connect to the database")
	}
	zap.L().Info("connected to PostgreSQL for API server")

	repo := repository.NewPostgresCardRepository(db)
	if err := repo.Init(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

type CardAPI struct {
	cardRepository repository.CardRepository
	timeout        time.Duration
}

func newRouter(api CardAPI) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	r.Route("/api/cards", func(r chi.Router) {
		r.Get("/", api.cardsHandler)
		r.Get("/{id}", api.cardHandler)
	})
	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// cardsHandler fetches all cards from the repository and serves them as JSON.
func (a CardAPI) cardsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()

	cards, err := a.cardRepository.GetAllCards(ctx)
	if err != nil {
		zap.L().Error("fetching cards", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not retrieve data from the database")
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (a CardAPI) cardHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()

	card, err := a.cardRepository.GetCard(ctx, uint(id))
	if errors.Is(err, repository.ErrCardNotFound) {
		writeError(w, http.StatusNotFound, "card not found")
		return
	}
	if err != nil {
		zap.L().Error("fetching card", zap.Uint64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not retrieve data from the database")
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encoding JSON", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conf, err := config.Init()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level, err := config.InitLogger(conf.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zap.L().Sync()

	// Pick up log level changes from config.yaml without a restart.
	conf.Watch(func(lc config.LogConfig) {
		l, err := zapcore.ParseLevel(lc.Level)
		if err != nil {
			zap.L().Warn("ignoring invalid log level", zap.String("level", lc.Level))
			return
		}
		level.SetLevel(l)
	})

	// 1. Initialize Database Connection and Repository
	repo, err := initDatabase(ctx, conf)
	if err != nil {
		zap.L().Fatal("database initialization failed", zap.Error(err))
	}

	count, err := repo.CountCards(ctx)
	if err != nil {
		zap.L().Fatal("counting cards", zap.Error(err))
	}

	// 2. Set up Handlers
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", conf.API.Port),
		Handler: newRouter(CardAPI{cardRepository: repo, timeout: conf.API.Timeout}),
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		zap.L().Fatal("listen", zap.String("addr", srv.Addr), zap.Error(err))
	}

	zap.L().Info("server starting", zap.Int("cards", count), zap.String("addr", srv.Addr))
	if err := serve(ctx, srv, ln, 10*time.Second); err != nil {
		zap.L().Fatal("server failed", zap.Error(err))
	}
}

// serve runs srv on ln until ctx is done, then shuts it down and waits up to
// grace for in-flight requests.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("server shutdown incomplete", zap.Error(err))
		return eris.Wrap(err, "shutdown")
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	zap.L().Info("server stopped")
	return nil
}
