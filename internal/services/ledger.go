package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	interf "github.com/EcoColonesInc/EcoColones-sub000/internal/interfaces"
	model "github.com/EcoColonesInc/EcoColones-sub000/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LedgerService struct {
	logger   *zap.Logger
	catalog  interf.CatalogStorage
	ledger   interf.LedgerStorage
	accounts interf.AccountStorage
	cache    interf.CacheStorage
}

func NewLedgerService(logger *zap.Logger, catalog interf.CatalogStorage, ledger interf.LedgerStorage, accounts interf.AccountStorage, cache interf.CacheStorage) *LedgerService {
	return &LedgerService{logger, catalog, ledger, accounts, cache}
}

// формат пользовательского кода транзакции
var codeFormat = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Сдача вторсырья: валидация -> резолвинг -> оценка -> запись -> начисление баллов
func (s *LedgerService) CreateDeposit(ctx context.Context, req model.DepositRequest) (model.DepositResult, error) {
	var res model.DepositResult

	// валидация
	if err := validateDeposit(req); err != nil {
		return res, err
	}

	// резолвинг
	person, err := s.ResolvePerson(ctx, req.Identification)
	if err != nil {
		return res, err
	}
	center, err := s.ResolveCounterparty(ctx, model.CENTER, req.Center)
	if err != nil {
		return res, err
	}
	resolved, err := s.resolveDepositItems(ctx, center.UUID, req.Items)
	if err != nil {
		return res, err
	}

	// оценка
	values, total, err := valuate(model.DEPOSIT, resolved)
	if err != nil {
		return res, err
	}

	// код транзакции: пользовательский или сгенерированный
	code := req.Code
	if code == "" {
		code = uuid.NewString()
	}

	// запись журнала
	tnx := model.Transaction{
		Kind:         model.DEPOSIT,
		Code:         code,
		Counterparty: center.UUID,
		Account:      person.UUID,
		Total:        total,
	}
	tnx, items, err := s.ledger.CreateTransaction(ctx, tnx, buildItems(resolved, values))
	if err != nil {
		return res, err
	}
	res = model.DepositResult{Transaction: tnx, Items: items, TotalPoints: total}

	// начисление баллов после коммита журнала,
	// отказ не откатывает уже записанную транзакцию
	if _, err = s.accounts.AddPoints(ctx, person.UUID, total); err != nil {
		s.logger.Error("points accrual failed",
			zap.String("transaction", tnx.UUID.String()),
			zap.String("account", person.UUID.String()),
			zap.Error(err),
		)
		return res, fmt.Errorf("transaction %s: %w", tnx.UUID, model.ErrBalanceUpdate)
	}
	s.invalidateBalance(ctx, person.Identification)
	return res, nil
}

// Покупка у партнера за эко-колоны
func (s *LedgerService) CreateRedemption(ctx context.Context, req model.RedemptionRequest) (model.RedemptionResult, error) {
	var res model.RedemptionResult

	// валидация
	if err := validateRedemption(req); err != nil {
		return res, err
	}

	// резолвинг
	person, err := s.ResolvePerson(ctx, req.Identification)
	if err != nil {
		return res, err
	}
	business, err := s.ResolveCounterparty(ctx, model.BUSINESS, req.Business)
	if err != nil {
		return res, err
	}
	currency, err := s.catalog.GetCurrencyByName(ctx, strings.TrimSpace(req.Currency))
	if err != nil {
		return res, err
	}
	resolved, err := s.resolveRedemptionItems(ctx, business.UUID, req.Items)
	if err != nil {
		return res, err
	}

	// оценка: цены покупок округляются вниз
	values, total, err := valuate(model.REDEMPTION, resolved)
	if err != nil {
		return res, err
	}

	// запись журнала
	tnx := model.Transaction{
		Kind:         model.REDEMPTION,
		Code:         req.Code,
		Counterparty: business.UUID,
		Account:      person.UUID,
		Total:        total,
		Currency:     currency.Code,
	}
	tnx, items, err := s.ledger.CreateTransaction(ctx, tnx, buildItems(resolved, values))
	if err != nil {
		return res, err
	}
	return model.RedemptionResult{Transaction: tnx, Items: items}, nil
}

// Баланс участника, чтение через кэш
func (s *LedgerService) GetBalance(ctx context.Context, identification string) (points int64, err error) {
	if s.cache != nil {
		points, err = s.cache.GetBalance(ctx, identification)
		if err == nil {
			return points, nil
		}
	}
	points, err = s.accounts.GetBalance(ctx, identification)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		_ = s.cache.SetBalance(ctx, identification, points)
	}
	return points, nil
}

// Обработка заявки на сдачу вторсырья с киоска (Kafka)
func (s *LedgerService) DepositProcess(ctx context.Context, payload string) error {
	req := model.DepositRequest{}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return fmt.Errorf("%s: %w", err, model.ErrValidation)
	}
	_, err := s.CreateDeposit(ctx, req)
	return err
}

// Обработка заявки на покупку из очереди (RabbitMQ),
// код возвращается для подтверждения в исходящую очередь
func (s *LedgerService) RedemptionProcess(ctx context.Context, payload string) (code string, err error) {
	req := model.RedemptionRequest{}
	if err = json.Unmarshal([]byte(payload), &req); err != nil {
		return "", fmt.Errorf("%s: %w", err, model.ErrValidation)
	}
	_, err = s.CreateRedemption(ctx, req)
	return req.Code, err
}

func (s *LedgerService) Log(err error) {
	s.logger.Error(err.Error())
}

// сброс кэша баланса, отказ только логируется
func (s *LedgerService) invalidateBalance(ctx context.Context, identification string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateBalance(ctx, identification); err != nil {
		s.logger.Error("cache invalidation failed",
			zap.String("identification", identification),
			zap.Error(err),
		)
	}
}

func validateDeposit(req model.DepositRequest) error {
	switch {
	case strings.TrimSpace(req.Identification) == "":
		return fmt.Errorf("identification is required: %w", model.ErrValidation)
	case strings.TrimSpace(req.Center) == "":
		return fmt.Errorf("center is required: %w", model.ErrValidation)
	case len(req.Items) == 0:
		return fmt.Errorf("items are required: %w", model.ErrValidation)
	}
	if req.Code != "" && !codeFormat.MatchString(req.Code) {
		return fmt.Errorf("code %q: %w", req.Code, model.ErrValidation)
	}
	return nil
}

func validateRedemption(req model.RedemptionRequest) error {
	switch {
	case strings.TrimSpace(req.Identification) == "":
		return fmt.Errorf("identification is required: %w", model.ErrValidation)
	case strings.TrimSpace(req.Business) == "":
		return fmt.Errorf("business is required: %w", model.ErrValidation)
	case strings.TrimSpace(req.Currency) == "":
		return fmt.Errorf("currency is required: %w", model.ErrValidation)
	case len(req.Items) == 0:
		return fmt.Errorf("items are required: %w", model.ErrValidation)
	case !codeFormat.MatchString(req.Code):
		return fmt.Errorf("code %q: %w", req.Code, model.ErrValidation)
	}
	return nil
}

func buildItems(resolved []resolvedItem, values []int64) []model.TransactionItem {
	items := make([]model.TransactionItem, len(resolved))
	for i, it := range resolved {
		items[i] = model.TransactionItem{
			Item:     it.item,
			Name:     it.name,
			Quantity: it.quantity,
			Value:    values[i],
		}
	}
	return items
}
