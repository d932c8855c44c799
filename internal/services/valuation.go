package services

import (
	"fmt"
	"math"

	model "github.com/EcoColonesInc/EcoColones-sub000/internal/models"
	"github.com/google/uuid"
)

// Позиция после резолвинга справочников
type resolvedItem struct {
	item     uuid.UUID
	name     string
	quantity float64
	rate     float64
}

// Оценка позиций: value = quantity * rate, округление по виду транзакции.
// Количество и курс должны быть конечными и > 0, итог строго > 0
func valuate(kind int, items []resolvedItem) (values []int64, total int64, err error) {
	values = make([]int64, len(items))
	for i, it := range items {
		if math.IsNaN(it.quantity) || math.IsInf(it.quantity, 0) || it.quantity <= 0 {
			return nil, 0, fmt.Errorf("item %q: quantity %v: %w", it.name, it.quantity, model.ErrInvalidValue)
		}
		if math.IsNaN(it.rate) || math.IsInf(it.rate, 0) || it.rate <= 0 {
			return nil, 0, fmt.Errorf("item %q: rate %v: %w", it.name, it.rate, model.ErrInvalidValue)
		}
		values[i] = model.RoundValue(kind, it.quantity*it.rate)
		total += values[i]
	}
	// все позиции могли округлиться в ноль
	if total <= 0 {
		return nil, 0, fmt.Errorf("total %d: %w", total, model.ErrInvalidValue)
	}
	return values, total, nil
}
