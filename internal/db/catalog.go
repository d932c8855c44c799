package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	model "github.com/EcoColonesInc/EcoColones-sub000/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Справочники в Mongo: контрагенты, материалы, товары, валюты, курсы
type CatalogDB struct {
	mgo *mongo.Client
	db  *mongo.Database
}

func NewCatalogDB() (*CatalogDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mng := os.Getenv("CATALOG_MONGO")
	if mng == "" {
		return nil, fmt.Errorf("env CATALOG_MONGO is not set")
	}

	options := options.Client().ApplyURI("mongodb://" + mng)
	client, err := mongo.Connect(ctx, options)
	if err != nil {
		return nil, err
	}
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, err
	}
	db := client.Database("catalogDB")

	return &CatalogDB{client, db}, nil
}

// точное совпадение имени без учета регистра
func nameFilter(name string) bson.M {
	return bson.M{"name": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"}}
}

func (c *CatalogDB) GetCounterpartyByName(ctx context.Context, kind int, name string) (model.Counterparty, error) {
	filter := nameFilter(name)
	filter["kind"] = kind

	var counterparty model.Counterparty
	err := c.db.Collection("counterparties").FindOne(ctx, filter).Decode(&counterparty)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Counterparty{}, fmt.Errorf("counterparty %q: %w", name, model.ErrNotFound)
		}
		return model.Counterparty{}, err
	}
	return counterparty, nil
}

func (c *CatalogDB) GetMaterialByName(ctx context.Context, name string) (model.Material, error) {
	var material model.Material
	err := c.db.Collection("materials").FindOne(ctx, nameFilter(name)).Decode(&material)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Material{}, fmt.Errorf("material %q: %w", name, model.ErrNotFound)
		}
		return model.Material{}, err
	}
	return material, nil
}

// состояние active проверяет сервис, чтобы вернуть отдельную ошибку
func (c *CatalogDB) GetProductByName(ctx context.Context, name string) (model.Product, error) {
	var product model.Product
	err := c.db.Collection("products").FindOne(ctx, nameFilter(name)).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Product{}, fmt.Errorf("product %q: %w", name, model.ErrNotFound)
		}
		return model.Product{}, err
	}
	return product, nil
}

func (c *CatalogDB) GetCurrencyByName(ctx context.Context, name string) (model.Currency, error) {
	var currency model.Currency
	err := c.db.Collection("currencies").FindOne(ctx, nameFilter(name)).Decode(&currency)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Currency{}, fmt.Errorf("currency %q: %w", name, model.ErrNotFound)
		}
		return model.Currency{}, err
	}
	return currency, nil
}

// Курс или цена контрагента для позиции.
// Контрагент без записи курса не принимает/не продает эту позицию
func (c *CatalogDB) GetRate(ctx context.Context, counterparty uuid.UUID, item uuid.UUID) (float64, error) {
	var doc struct {
		Rate float64 `bson:"rate"`
	}
	filter := bson.M{"counterparty": counterparty, "item": item}
	err := c.db.Collection("rates").FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("rate for item %s: %w", item, model.ErrNotFound)
		}
		return 0, err
	}
	return doc.Rate, nil
}
