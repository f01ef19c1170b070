package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/fashion-search/internal/cfg"
	v1Http "github.com/DRSN-tech/fashion-search/internal/delivery/v1/http"
	"github.com/DRSN-tech/fashion-search/internal/infrastructure/encoder"
	qdrantRepo "github.com/DRSN-tech/fashion-search/internal/repository/qdrant"
	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/clients"
	"github.com/DRSN-tech/fashion-search/pkg/closer"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/DRSN-tech/fashion-search/pkg/readiness"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const shutdownTimeout = 10 * time.Second

// App — собранный API-сервер со всеми зависимостями.
// Все ресурсы регистрируются в closer и освобождаются в обратном порядке.
type App struct {
	cfg     *config.Config
	logger  logger.Logger
	state   *readiness.State
	httpSrv *v1Http.Server
	closer  *closer.Closer
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	state := readiness.NewState()
	state.Set(readiness.Starting)

	cl := closer.NewCloser(0)

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		return qdrantClient.Client.Close()
	})

	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pointsCount, err := clients.RequireCollection(startCtx, qdrantClient)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	log.Infof("collection %q is available, %d points indexed", cfg.Qdrant.CollectionName, pointsCount)

	pointRepo := qdrantRepo.NewPointRepo(qdrantClient.Client, cfg.Qdrant)

	enc := encoder.NewEncoder(cfg.Encoder)
	if err := enc.Ping(startCtx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	log.Infof("encoder service is reachable at %s", cfg.Encoder.Addr)

	searchUC := usecase.NewSearchUC(enc, pointRepo, cfg.Storage, log)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(searchUC, state)

	httpSrv := v1Http.NewServer(r, cfg.Http)

	return &App{
		cfg:     cfg,
		logger:  log,
		state:   state,
		httpSrv: httpSrv,
		closer:  cl,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до сигнала остановки либо
// фатальной ошибки сервера.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	a.state.Set(readiness.Ready)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case sig := <-shutdown:
		a.logger.Infof("received signal %v, stopping gracefully...", sig)
	}

	a.state.Set(readiness.ShuttingDown)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("resource shutdown: %v", err)
	}

	a.logger.Infof("application shutdown complete")
	return appErr
}
