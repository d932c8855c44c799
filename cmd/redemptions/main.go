// Job - обработка покупок от POS-терминалов партнеров
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	db "github.com/EcoColonesInc/EcoColones-sub000/internal/db"
	rabbit "github.com/EcoColonesInc/EcoColones-sub000/internal/external/rabbitmq"
	interf "github.com/EcoColonesInc/EcoColones-sub000/internal/interfaces"
	services "github.com/EcoColonesInc/EcoColones-sub000/internal/services"
	"go.uber.org/zap"
)

func main() {
	// log
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// rabbitmq
	reader, err := rabbit.NewRabbitConsumer()
	if err != nil {
		logger.Error(err.Error())
		panic(err)
	}
	defer reader.Close()

	// database
	ledgerdb, err := db.NewLedgerDB(logger)
	if err != nil {
		logger.Error(err.Error())
		panic(err)
	}
	catalog, err := db.NewCatalogDB()
	if err != nil {
		logger.Error(err.Error())
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

	// start
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var semcount int
	semenv := os.Getenv("LEDGER_REDEMPTIONS_COUNT")
	if semenv == "" {
		semcount = 5
	} else {
		semcount, err = strconv.Atoi(semenv)
		if err != nil {
			semcount = 5
		}
	}
	if semcount == 0 {
		semcount = 1
	}

	// os signals
	go func() {
		<-interrupt
		cancel()
	}()

	// workers
	wg := &sync.WaitGroup{}
	wg.Add(semcount)
	for i := 0; i < semcount; i++ {
		go worker(ctx, serv, wg, logger, reader)
	}
	wg.Wait()
}

// worker for rabbitmq messages
func worker(ctx context.Context, serv *services.LedgerService, wg *sync.WaitGroup, logger *zap.Logger, reader *rabbit.RabbitConsumer) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg, ok := <-reader.Msg
			if !ok {
				return
			}
			code, err := serv.RedemptionProcess(ctx, string(msg.Body))
			if err != nil {
				logger.Error(err.Error())
				if code != "" {
					_ = reader.Processed(ctx, code, false)
				}
				continue
			}
			err = reader.Processed(ctx, code, true)
			if err != nil {
				logger.Error(err.Error())
				continue
			}
		}
	}
}
