// HTTP API журнала: сдача вторсырья, покупки у партнеров, балансы
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/EcoColonesInc/EcoColones-sub000/internal/api"
	db "github.com/EcoColonesInc/EcoColones-sub000/internal/db"
	interf "github.com/EcoColonesInc/EcoColones-sub000/internal/interfaces"
	services "github.com/EcoColonesInc/EcoColones-sub000/internal/services"
	otel "github.com/EcoColonesInc/EcoColones-sub000/observability/otel"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// log
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// config
	port := os.Getenv("LEDGER_PORT")
	if port == "" {
		panic("env LEDGER_PORT is not set")
	}

	ctx := context.Background()

	// tracing, если настроен экспортер
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		shutdown := otel.InitTracer(ctx)
		defer shutdown()
	}

	// database
	ledgerdb, err := db.NewLedgerDB(logger)
	if err != nil {
		panic(err)
	}
	catalog, err := db.NewCatalogDB()
	if err != nil {
		panic(err)
	}

	// cache
	var cache interf.CacheStorage
	cache, err = db.NewCacheService()
	if err != nil {
		logger.Error(err.Error())
		cache = nil
	}

	// services
	serv := services.NewLedgerService(logger, catalog, ledgerdb, ledgerdb, cache)

	// api handlers
	handler := api.NewHandler(serv, logger)
	srv := &http.Server{
		Handler:      otelhttp.NewHandler(handler, "ledger"),
		Addr:         ":" + port,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	// shutdown
	g.Go(func() error {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
		select {
		case <-interrupt:
		case <-gctx.Done():
			return nil
		}
		timeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(timeout)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}
