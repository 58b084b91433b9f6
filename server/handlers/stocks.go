package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/stockwatch/stockwatch/errors"
	"github.com/stockwatch/stockwatch/jobs"
	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/market"
	"github.com/stockwatch/stockwatch/model"
	"github.com/stockwatch/stockwatch/server"
	"github.com/stockwatch/stockwatch/store"
)

// StockHandler serves the public stock surface plus the admin triggers
// for the refresh and digest jobs.
type StockHandler struct {
	stocks  *store.StockStore
	market  *market.Client
	refresh *jobs.RefreshJob
	digest  *jobs.DigestJob
	log     *logger.Logger
}

func NewStockHandler(stocks *store.StockStore, client *market.Client, refresh *jobs.RefreshJob, digest *jobs.DigestJob, log *logger.Logger) *StockHandler {
	return &StockHandler{
		stocks:  stocks,
		market:  client,
		refresh: refresh,
		digest:  digest,
		log:     log.WithComponent("stock_handler"),
	}
}

// List returns every tracked instrument. Before the first refresh has
// populated the local table, the configured exchange's live listing is
// served instead.
func (h *StockHandler) List(c *gin.Context) {
	count, err := h.stocks.CountMeta(c.Request.Context())
	if err != nil {
		server.RespondError(c, err)
		return
	}
	if count == 0 {
		listings, err := h.market.Listings(c.Request.Context())
		if err != nil {
			server.RespondError(c, err)
			return
		}
		metas := make([]model.StockMeta, 0, len(listings))
		for _, l := range listings {
			metas = append(metas, model.StockMeta{
				Symbol:   l.Symbol,
				Currency: l.Currency,
				Exchange: l.Exchange,
				MicCode:  l.MicCode,
				Type:     l.Type,
			})
		}
		server.RespondOK(c, metas)
		return
	}

	metas, err := h.stocks.ListMeta(c.Request.Context())
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondOK(c, metas)
}

// Get fetches a live quote for the given symbol from the market-data
// API. Unknown symbols answer 404. When the market API is unreachable
// the most recent stored value is served instead.
func (h *StockHandler) Get(c *gin.Context) {
	symbol := c.Param("symbol")
	ts, err := h.market.Quote(c.Request.Context(), symbol)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			server.RespondError(c, err)
			return
		}
		stored, storedErr := h.stocks.LatestQuote(c.Request.Context(), symbol)
		if storedErr != nil {
			server.RespondError(c, err)
			return
		}
		h.log.Warn("Market API unavailable, serving stored quote", map[string]interface{}{
			"symbol": symbol,
			"error":  err.Error(),
		})
		server.RespondOK(c, stored)
		return
	}
	meta, value, err := ts.Latest()
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondOK(c, model.Quote{
		Symbol:   meta.Symbol,
		Datetime: value.Datetime,
		Open:     value.Open,
		High:     value.High,
		Low:      value.Low,
		Close:    value.Close,
		Volume:   value.Volume,
		Currency: meta.Currency,
	})
}

// Update runs the stock refresh immediately, admin only.
func (h *StockHandler) Update(c *gin.Context) {
	if err := h.refresh.Run(c.Request.Context()); err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondNoContent(c)
}

// SendEmails runs the daily digest immediately, admin only.
func (h *StockHandler) SendEmails(c *gin.Context) {
	if err := h.digest.Run(c.Request.Context()); err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondNoContent(c)
}
