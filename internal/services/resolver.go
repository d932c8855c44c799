package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	model "github.com/EcoColonesInc/EcoColones-sub000/internal/models"
	"github.com/google/uuid"
)

// Резолвинг пользовательских имен и номеров в канонические записи.
// Строго последовательный: первый отказ прерывает всю заявку

// Поиск участника по ид. номеру: сначала как есть,
// затем нормализованная числовая форма (без ведущих нулей)
func (s *LedgerService) ResolvePerson(ctx context.Context, identification string) (model.Person, error) {
	ident := strings.TrimSpace(identification)
	person, err := s.accounts.GetPersonByIdentification(ctx, ident)
	if err == nil {
		return person, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.Person{}, err
	}
	if num, nerr := strconv.ParseInt(ident, 10, 64); nerr == nil {
		normalized := strconv.FormatInt(num, 10)
		if normalized != ident {
			return s.accounts.GetPersonByIdentification(ctx, normalized)
		}
	}
	return model.Person{}, err
}

// Поиск контрагента по имени без учета регистра
func (s *LedgerService) ResolveCounterparty(ctx context.Context, kind int, name string) (model.Counterparty, error) {
	return s.catalog.GetCounterpartyByName(ctx, kind, strings.TrimSpace(name))
}

// Материалы с курсом пункта приема
func (s *LedgerService) resolveDepositItems(ctx context.Context, center uuid.UUID, items []model.DepositItem) ([]resolvedItem, error) {
	resolved := make([]resolvedItem, 0, len(items))
	for _, it := range items {
		material, err := s.catalog.GetMaterialByName(ctx, strings.TrimSpace(it.Material))
		if err != nil {
			return nil, err
		}
		rate, err := s.catalog.GetRate(ctx, center, material.UUID)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, resolvedItem{material.UUID, material.Name, it.Amount, rate})
	}
	return resolved, nil
}

// Товары партнера с ценой. Неактивный товар недоступен для покупки
func (s *LedgerService) resolveRedemptionItems(ctx context.Context, business uuid.UUID, items []model.RedemptionItem) ([]resolvedItem, error) {
	resolved := make([]resolvedItem, 0, len(items))
	for _, it := range items {
		product, err := s.catalog.GetProductByName(ctx, strings.TrimSpace(it.Product))
		if err != nil {
			return nil, err
		}
		if !product.Active {
			return nil, fmt.Errorf("product %q: %w", product.Name, model.ErrUnavailable)
		}
		price, err := s.catalog.GetRate(ctx, business, product.UUID)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, resolvedItem{product.UUID, product.Name, it.Amount, price})
	}
	return resolved, nil
}
