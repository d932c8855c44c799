package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	model "github.com/EcoColonesInc/EcoColones-sub000/internal/models"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// нарушение уникального индекса
const pgUniqueViolation = "23505"

type LedgerDB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewLedgerDB(logger *zap.Logger) (db *LedgerDB, err error) {
	// config
	purl := os.Getenv("LEDGER_DB")
	if purl == "" {
		return nil, fmt.Errorf("env LEDGER_DB is not set")
	}
	port := os.Getenv("LEDGER_DB_PORT")
	if port == "" {
		return nil, fmt.Errorf("env LEDGER_DB_PORT is not set")
	}
	user := os.Getenv("LEDGER_DB_USER")
	if user == "" {
		return nil, fmt.Errorf("env LEDGER_DB_USER is not set")
	}
	password := os.Getenv("LEDGER_DB_PASSWORD")
	if password == "" {
		return nil, fmt.Errorf("env LEDGER_DB_PASSWORD is not set")
	}
	database := os.Getenv("LEDGER_DB_BASE")
	if database == "" {
		return nil, fmt.Errorf("env LEDGER_DB_BASE is not set")
	}
	dsn := "postgres://" + user + ":" + password + "@" + purl + ":" + port + "/" + database

	pool, err := pgxpool.New(context.Background(), dsn)
	return &LedgerDB{pool, logger}, err
}

// Запись транзакции с позициями одной транзакцией БД: родитель, затем позиции батчем.
// Позиция не существует без записанного родителя, откат вместо компенсирующего удаления.
// Дубликат кода определяется по уникальному индексу (kind, code), без предварительного select
func (l *LedgerDB) CreateTransaction(ctx context.Context, tnx model.Transaction, items []model.TransactionItem) (model.Transaction, []model.TransactionItem, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return model.Transaction{}, nil, err
	}
	defer conn.Release()

	tnx.UUID = uuid.New()
	tnx.CreatedAt = time.Now()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.Transaction{}, nil, err
	}
	var committed bool
	defer func() {
		if committed {
			return
		}
		// отказ отката только логируется, наружу идет исходная ошибка
		if rerr := tx.Rollback(ctx); rerr != nil && !errors.Is(rerr, pgx.ErrTxClosed) {
			l.logger.Error("rollback failed",
				zap.Error(rerr),
				zap.String("transaction", tnx.UUID.String()),
			)
		}
	}()

	var currency any
	if tnx.Currency != "" {
		currency = tnx.Currency
	}

	// родитель
	sql, args, err := sq.Insert("tnx").
		Columns("id", "kind", "code", "counterparty", "account", "total", "currency", "createdat").
		Values(tnx.UUID, tnx.Kind, tnx.Code, tnx.Counterparty, tnx.Account, tnx.Total, currency, tnx.CreatedAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		l.logger.Error("SQL error",
			zap.Error(err),
			zap.String("query", sql),
			zap.Any("args", args),
		)
		return model.Transaction{}, nil, err
	}
	_, err = tx.Exec(ctx, sql, args...)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == pgUniqueViolation {
			return model.Transaction{}, nil, fmt.Errorf("code %q: %w", tnx.Code, model.ErrDuplicate)
		}
		l.logger.Error("SQL error",
			zap.Error(err),
			zap.String("query", sql),
			zap.Any("args", args),
		)
		return model.Transaction{}, nil, err
	}

	// позиции одним батчем
	batch := &pgx.Batch{}
	for i := range items {
		items[i].UUID = uuid.New()
		items[i].Transaction = tnx.UUID
		sql, args, err := sq.Insert("tnxitems").
			Columns("id", "tnx", "item", "name", "quantity", "value").
			Values(items[i].UUID, tnx.UUID, items[i].Item, items[i].Name, items[i].Quantity, items[i].Value).
			PlaceholderFormat(sq.Dollar).
			ToSql()
		if err != nil {
			return model.Transaction{}, nil, err
		}
		batch.Queue(sql, args...)
	}
	results := tx.SendBatch(ctx, batch)
	for range items {
		if _, err = results.Exec(); err != nil {
			results.Close()
			l.logger.Error("batch insert error",
				zap.Error(err),
				zap.String("transaction", tnx.UUID.String()),
			)
			return model.Transaction{}, nil, err
		}
	}
	if err = results.Close(); err != nil {
		return model.Transaction{}, nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return model.Transaction{}, nil, err
	}
	committed = true
	return tnx, items, nil
}

// Поиск участника по ид. номеру, точное совпадение
func (l *LedgerDB) GetPersonByIdentification(ctx context.Context, identification string) (model.Person, error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return model.Person{}, err
	}
	defer conn.Release()

	sql, args, err := sq.Select("uuid", "identification", "name", "balance").
		From("accounts").
		Where(sq.Eq{"identification": identification}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.Person{}, err
	}

	var person model.Person
	var pguuid pgtype.UUID
	var name pgtype.Text
	row := conn.QueryRow(ctx, sql, args...)
	err = row.Scan(&pguuid, &person.Identification, &name, &person.Balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Person{}, fmt.Errorf("person %q: %w", identification, model.ErrNotFound)
		}
		return model.Person{}, err
	}
	person.UUID, _ = uuid.FromBytes(pguuid.Bytes[:])
	person.Name = name.String
	return person, nil
}

// Атомарное изменение баланса одним UPDATE, без read-modify-write
func (l *LedgerDB) AddPoints(ctx context.Context, account uuid.UUID, points int64) (balance int64, err error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	row := conn.QueryRow(ctx,
		"UPDATE accounts SET balance = balance + $1 WHERE uuid = $2 RETURNING balance",
		points, account)
	err = row.Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("account %s: %w", account, model.ErrNotFound)
		}
		return 0, err
	}
	return balance, nil
}

// Баланс участника
func (l *LedgerDB) GetBalance(ctx context.Context, identification string) (points int64, err error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, "SELECT balance FROM accounts WHERE identification = $1", identification)
	err = row.Scan(&points)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("person %q: %w", identification, model.ErrNotFound)
		}
		return 0, err
	}
	return points, nil
}
