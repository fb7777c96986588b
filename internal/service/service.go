package service

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medgrid/fhirgate/internal/service/config"
	"github.com/medgrid/fhirgate/internal/service/runtime"
	transactHTTP "github.com/medgrid/fhirgate/internal/service/transact/adapters/http"
	"github.com/medgrid/fhirgate/internal/service/transact/adapters/search"
	"github.com/medgrid/fhirgate/internal/service/transact/adapters/storage"
	"github.com/medgrid/fhirgate/internal/service/transact/app"
	"github.com/medgrid/fhirgate/internal/service/transact/app/commands"
	"github.com/medgrid/fhirgate/internal/service/transact/app/queries"
	"github.com/medgrid/fhirgate/internal/service/transact/fhir"
	"github.com/medgrid/fhirgate/internal/service/transact/fhir/outcome"
)

type Service struct {
	cfg        config.Config
	db         *sqlx.DB
	httpServer *http.Server
}

func NewFHIRGateService(configPath string) (*Service, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.Log.Level)

	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	store := storage.NewSQLiteStore(db)
	gateway := search.NewSQLiteGateway(db)
	factory := storage.NewWrapperFactory()
	policy := fhir.NewPolicy(cfg.FHIR.SupportedTypes, cfg.FHIR.KeepHistory)

	validator := fhir.NewBundleValidator(gateway, policy)
	composer := outcome.NewComposer()

	validateHandler := commands.NewValidateTransactionHandler(validator, composer)
	commitHandler := commands.NewCommitResourceHandler(factory, store, gateway, policy)
	cmdBus := app.NewCommandBus(validateHandler, commitHandler)

	versionHandler := queries.NewGetResourceVersionQueryHandler(store)
	queryBus := app.NewQueryBus(versionHandler)

	httpHandler := transactHTTP.NewServer(cmdBus, queryBus)

	httpServer, err := runtime.NewHTTPServer(cfg, httpHandler)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Service{
		cfg:        cfg,
		db:         db,
		httpServer: httpServer,
	}, nil
}

func (s *Service) Start(ctx context.Context) error {
	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Msg("listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(timeoutCtx); err != nil {
		return err
	}
	if err := s.db.Close(); err != nil {
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
