// Job - прием заявок на сдачу вторсырья с киосков
// Опрос Kafka -> запись транзакции и начисление эко-колонов
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	db "github.com/EcoColonesInc/EcoColones-sub000/internal/db"
	kafka "github.com/EcoColonesInc/EcoColones-sub000/internal/external/kafka"
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

	// kafka
	reader, err := kafka.GetNewReader("deposits")
	if err != nil {
		panic(err)
	}
	defer reader.CloseReader()

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

	// start
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var semcount int
	semenv := os.Getenv("LEDGER_DEPOSITS_COUNT")
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

	wg := &sync.WaitGroup{}
	semaphore := make(chan struct{}, semcount)

loop:
	for {
		select {
		case <-interrupt:
			cancel()
			break loop
		case <-ctx.Done():
			break loop
		default:

			deposit, err := reader.GetNewMessage(ctx)
			if err != nil {
				logger.Error(err.Error())
				return
			}

			semaphore <- struct{}{}
			wg.Add(1)
			go func(deposit string) {
				defer wg.Done()
				defer func() { <-semaphore }()
				err := serv.DepositProcess(ctx, deposit)
				if err != nil {
					logger.Error(err.Error())
					return
				}
			}(deposit)
		}
	}
	wg.Wait()
}
