package store

import (
	"context"

	"github.com/stockwatch/stockwatch/database"
	"github.com/stockwatch/stockwatch/errors"
	"github.com/stockwatch/stockwatch/model"
)

// Favourites returns the stock metadata a user follows.
func (s *UserStore) Favourites(ctx context.Context, userID uint) ([]model.StockMeta, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	metas := []model.StockMeta{}
	err := s.db.WithContext(ctx).Model(&model.StockMeta{}).
		Joins("JOIN favourite_stocks ON favourite_stocks.meta_id = stock_meta.id").
		Where("favourite_stocks.user_id = ?", userID).
		Order("stock_meta.symbol").
		Find(&metas).Error
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	return metas, nil
}

// AddFavourite links a user to a stock by symbol. Adding a favourite twice
// is harmless.
func (s *UserStore) AddFavourite(ctx context.Context, userID uint, symbol string) error {
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}

	var meta model.StockMeta
	err := s.db.WithContext(ctx).Where("symbol = ?", symbol).First(&meta).Error
	if err != nil {
		if database.IsNotFound(err) {
			return errors.NoSuchStock(symbol)
		}
		return errors.DatabaseError(err)
	}

	err = s.db.WithContext(ctx).Create(&model.FavouriteStock{UserID: userID, MetaID: meta.ID}).Error
	if err != nil && !database.IsDuplicate(err) {
		return errors.DatabaseError(err)
	}
	return nil
}

// RemoveFavourite unlinks a user from a stock by symbol.
func (s *UserStore) RemoveFavourite(ctx context.Context, userID uint, symbol string) error {
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}

	var meta model.StockMeta
	err := s.db.WithContext(ctx).Where("symbol = ?", symbol).First(&meta).Error
	if err != nil {
		if database.IsNotFound(err) {
			return errors.NoSuchStock(symbol)
		}
		return errors.DatabaseError(err)
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND meta_id = ?", userID, meta.ID).
		Delete(&model.FavouriteStock{})
	if res.Error != nil {
		return errors.DatabaseError(res.Error)
	}
	return nil
}

// UsersWithFavourites returns the credentials of every non-deleted user
// holding at least one favourite, for the daily digest.
func (s *UserStore) UsersWithFavourites(ctx context.Context) ([]model.SecurityInfo, error) {
	var infos []model.SecurityInfo
	err := s.db.WithContext(ctx).Model(&model.SecurityInfo{}).
		Joins("JOIN users ON users.id = security_info.user_id AND users.is_deleted = ?", false).
		Where("security_info.user_id IN (?)",
			s.db.GormDB.Model(&model.FavouriteStock{}).Distinct("user_id")).
		Order("security_info.user_id").
		Find(&infos).Error
	if err != nil {
		return nil, errors.DatabaseError(err)
	}
	return infos, nil
}
