package interfaces

import (
	"context"

	model "github.com/EcoColonesInc/EcoColones-sub000/internal/models"
	"github.com/google/uuid"
)

//go:generate mockgen -destination=./../services/mock_storage_test.go -package=services . CatalogStorage,LedgerStorage,AccountStorage,CacheStorage

// Справочники: контрагенты, материалы, товары, валюты, курсы
type CatalogStorage interface {
	GetCounterpartyByName(ctx context.Context, kind int, name string) (model.Counterparty, error)
	GetMaterialByName(ctx context.Context, name string) (model.Material, error)
	GetProductByName(ctx context.Context, name string) (model.Product, error)
	GetCurrencyByName(ctx context.Context, name string) (model.Currency, error)
	GetRate(ctx context.Context, counterparty uuid.UUID, item uuid.UUID) (float64, error)
}

// Журнал транзакций
type LedgerStorage interface {
	CreateTransaction(ctx context.Context, tnx model.Transaction, items []model.TransactionItem) (model.Transaction, []model.TransactionItem, error)
}

// Счета участников
type AccountStorage interface {
	GetPersonByIdentification(ctx context.Context, identification string) (model.Person, error)
	AddPoints(ctx context.Context, account uuid.UUID, points int64) (balance int64, err error)
	GetBalance(ctx context.Context, identification string) (points int64, err error)
}

type CacheStorage interface {
	GetBalance(ctx context.Context, identification string) (points int64, err error)
	SetBalance(ctx context.Context, identification string, points int64) (err error)
	InvalidateBalance(ctx context.Context, identification string) error
}

// Сервис журнала для API
type Ledger interface {
	CreateDeposit(ctx context.Context, req model.DepositRequest) (model.DepositResult, error)
	CreateRedemption(ctx context.Context, req model.RedemptionRequest) (model.RedemptionResult, error)
	GetBalance(ctx context.Context, identification string) (points int64, err error)
}
