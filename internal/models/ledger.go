package models

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// Виды транзакций
const (
	DEPOSIT    = 0 // сдача вторсырья в пункте приема
	REDEMPTION = 1 // покупка у партнера за эко-колоны
)

// Виды контрагентов
const (
	CENTER   = 0 // пункт приема
	BUSINESS = 1 // партнер
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUnavailable   = errors.New("unavailable")
	ErrDuplicate     = errors.New("duplicate transaction code")
	ErrInvalidValue  = errors.New("invalid value")
	ErrValidation    = errors.New("invalid request")
	ErrBalanceUpdate = errors.New("balance update failed")
)

// Участник программы со счетом баллов
type Person struct {
	UUID           uuid.UUID `json:"id"`
	Identification string    `json:"identification"` // идентификационный номер
	Name           string    `json:"name"`
	Balance        int64     `json:"balance"` // баланс эко-колонов
}

// Контрагент: пункт приема или партнер
type Counterparty struct {
	UUID     uuid.UUID `bson:"id" json:"id"`
	Kind     int       `bson:"kind" json:"kind"`
	Name     string    `bson:"name" json:"name"`
	Location string    `bson:"location" json:"location"`
}

// Материал (вторсырье)
type Material struct {
	UUID uuid.UUID `bson:"id" json:"id"`
	Name string    `bson:"name" json:"name"`
}

// Товар партнера
type Product struct {
	UUID   uuid.UUID `bson:"id" json:"id"`
	Name   string    `bson:"name" json:"name"`
	Active bool      `bson:"active" json:"active"`
}

// Валюта
type Currency struct {
	UUID uuid.UUID `bson:"id" json:"id"`
	Name string    `bson:"name" json:"name"`
	Code string    `bson:"code" json:"code"`
}

// Транзакция журнала. После записи не изменяется, total не пересчитывается
type Transaction struct {
	UUID         uuid.UUID `json:"id"`
	Kind         int       `json:"kind"`
	Code         string    `json:"code"`
	Counterparty uuid.UUID `json:"counterparty"`
	Account      uuid.UUID `json:"account"`
	Total        int64     `json:"total"`
	Currency     string    `json:"currency,omitempty"` // только для покупок
	CreatedAt    time.Time `json:"created_at"`
}

// Позиция транзакции
type TransactionItem struct {
	UUID        uuid.UUID `json:"id"`
	Transaction uuid.UUID `json:"transaction"`
	Item        uuid.UUID `json:"item"`
	Name        string    `json:"name"`
	Quantity    float64   `json:"quantity"`
	Value       int64     `json:"value"`
}

// Округление стоимости позиции зависит от вида транзакции:
// начисления - до ближайшего целого, покупки - вниз.
// Политика разная сознательно, см. DESIGN.md
func RoundValue(kind int, value float64) int64 {
	if kind == REDEMPTION {
		return int64(math.Floor(value))
	}
	return int64(math.Round(value))
}

// Позиция заявки на сдачу вторсырья
type DepositItem struct {
	Material string  `json:"material"`
	Amount   float64 `json:"amount"`
}

// Заявка на сдачу вторсырья
type DepositRequest struct {
	Identification string        `json:"identification"`
	Center         string        `json:"center"`
	Code           string        `json:"code,omitempty"`
	Items          []DepositItem `json:"items"`
}

type DepositResult struct {
	Transaction Transaction       `json:"transaction"`
	Items       []TransactionItem `json:"items"`
	TotalPoints int64             `json:"total_points"`
}

// Позиция заявки на покупку
type RedemptionItem struct {
	Product string  `json:"product"`
	Amount  float64 `json:"amount"`
}

// Заявка на покупку у партнера
type RedemptionRequest struct {
	Identification string           `json:"identification"`
	Business       string           `json:"business"`
	Currency       string           `json:"currency"`
	Code           string           `json:"code"`
	Items          []RedemptionItem `json:"items"`
}

type RedemptionResult struct {
	Transaction Transaction       `json:"transaction"`
	Items       []TransactionItem `json:"items"`
}
