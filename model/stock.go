package model

import "time"

// StockMeta describes an instrument as reported by the market-data API.
type StockMeta struct {
	ID               uint   `gorm:"primaryKey" json:"-"`
	Symbol           string `gorm:"uniqueIndex;not null" json:"symbol"`
	Interval         string `json:"interval,omitempty"`
	Currency         string `json:"currency,omitempty"`
	Exchange         string `json:"exchange,omitempty"`
	ExchangeTimezone string `json:"exchangeTimezone,omitempty"`
	MicCode          string `json:"micCode,omitempty"`
	Type             string `json:"type,omitempty"`
}

// TableName keeps the original schema's table name.
func (StockMeta) TableName() string { return "stock_meta" }

// StockValue is one observed quote for an instrument.
type StockValue struct {
	ID       uint      `gorm:"primaryKey" json:"-"`
	MetaID   uint      `gorm:"index;not null" json:"-"`
	Datetime time.Time `json:"datetime"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
}

// FavouriteStock links a user to an instrument they follow. The composite
// unique index makes adding the same favourite twice a no-op failure.
type FavouriteStock struct {
	ID     uint `gorm:"primaryKey" json:"-"`
	UserID uint `gorm:"not null;uniqueIndex:idx_fav_user_meta" json:"userId"`
	MetaID uint `gorm:"not null;uniqueIndex:idx_fav_user_meta" json:"-"`
}

// Quote is a stock's metadata joined with its most recent value, the shape
// served by GET /stocks/:symbol and mailed in the daily digest.
type Quote struct {
	Symbol   string    `json:"symbol"`
	Datetime time.Time `json:"dateTime"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	Currency string    `json:"currency,omitempty"`
}
