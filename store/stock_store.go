package store

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/stockwatch/stockwatch/database"
	"github.com/stockwatch/stockwatch/errors"
	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/model"
)

// StockStore persists stock metadata and observed values.
type StockStore struct {
	db  *database.DB
	log *logger.Logger
}

// NewStockStore creates a StockStore.
func NewStockStore(db *database.DB, log *logger.Logger) *StockStore {
	return &StockStore{db: db, log: log.WithComponent("stock_store")}
}

// UpsertMeta inserts or refreshes a stock's metadata keyed by symbol and
// fills in the row's id.
func (s *StockStore) UpsertMeta(ctx context.Context, meta *model.StockMeta) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"interval", "currency", "exchange", "exchange_timezone", "mic_code", "type",
		}),
	}).Create(meta).Error
	if err != nil {
		return errors.DatabaseError(err)
	}
	if meta.ID == 0 {
		var existing model.StockMeta
		if err := s.db.WithContext(ctx).Where("symbol = ?", meta.Symbol).First(&existing).Error; err != nil {
			return errors.DatabaseError(err)
		}
		meta.ID = existing.ID
	}
	return nil
}

// InsertValue records one observed quote.
func (s *StockStore) InsertValue(ctx context.Context, value *model.StockValue) error {
	if err := s.db.WithContext(ctx).Create(value).Error; err != nil {
		return errors.DatabaseError(err)
	}
	return nil
}

// MetaBySymbol returns metadata for one symbol.
func (s *StockStore) MetaBySymbol(ctx context.Context, symbol string) (*model.StockMeta, error) {
	var meta model.StockMeta
	err := s.db.WithContext(ctx).Where("symbol = ?", symbol).First(&meta).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.NoSuchStock(symbol)
		}
		return nil, errors.DatabaseError(err)
	}
	return &meta, nil
}

// ListMeta returns every known stock's metadata.
func (s *StockStore) ListMeta(ctx context.Context) ([]model.StockMeta, error) {
	var metas []model.StockMeta
	if err := s.db.WithContext(ctx).Order("symbol").Find(&metas).Error; err != nil {
		return nil, errors.DatabaseError(err)
	}
	return metas, nil
}

// Symbols returns every known symbol.
func (s *StockStore) Symbols(ctx context.Context) ([]string, error) {
	var symbols []string
	err := s.db.WithContext(ctx).Model(&model.StockMeta{}).
		Order("symbol").
		Pluck("symbol", &symbols).Error
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	return symbols, nil
}

// LatestQuote returns a symbol's metadata joined with its most recent
// stored value. A symbol with metadata but no values yet is reported as
// missing.
func (s *StockStore) LatestQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	meta, err := s.MetaBySymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	var value model.StockValue
	err = s.db.WithContext(ctx).
		Where("meta_id = ?", meta.ID).
		Order("datetime DESC").
		First(&value).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, errors.NoSuchStock(symbol)
		}
		return nil, errors.DatabaseError(err)
	}
	return quoteOf(meta, &value), nil
}

// QuotesForUser returns the latest quote of each of a user's favourites.
// Favourites without stored values are skipped.
func (s *StockStore) QuotesForUser(ctx context.Context, userID uint) ([]model.Quote, error) {
	var metas []model.StockMeta
	err := s.db.WithContext(ctx).Model(&model.StockMeta{}).
		Joins("JOIN favourite_stocks ON favourite_stocks.meta_id = stock_meta.id").
		Where("favourite_stocks.user_id = ?", userID).
		Order("stock_meta.symbol").
		Find(&metas).Error
	if err != nil {
		return nil, errors.DatabaseError(err)
	}

	quotes := make([]model.Quote, 0, len(metas))
	for i := range metas {
		var value model.StockValue
		err := s.db.WithContext(ctx).
			Where("meta_id = ?", metas[i].ID).
			Order("datetime DESC").
			First(&value).Error
		if err != nil {
			if database.IsNotFound(err) {
				continue
			}
			return nil, errors.DatabaseError(err)
		}
		quotes = append(quotes, *quoteOf(&metas[i], &value))
	}
	return quotes, nil
}

// CountMeta returns the number of known stocks.
func (s *StockStore) CountMeta(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.StockMeta{}).Count(&count).Error; err != nil {
		return 0, errors.DatabaseError(err)
	}
	return count, nil
}

func quoteOf(meta *model.StockMeta, value *model.StockValue) *model.Quote {
	return &model.Quote{
		Symbol:   meta.Symbol,
		Datetime: value.Datetime,
		Open:     value.Open,
		High:     value.High,
		Low:      value.Low,
		Close:    value.Close,
		Volume:   value.Volume,
		Currency: meta.Currency,
	}
}
