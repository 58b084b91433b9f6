package jobs

import (
	"context"
	"fmt"

	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/market"
	"github.com/stockwatch/stockwatch/store"
)

// seedSymbols bootstraps the stock table on first run.
var seedSymbols = []string{"AAPL", "GOOGL", "TSLA", "MSFT", "AMZN", "NVDA", "META"}

// RefreshJob fetches the latest quote for every known symbol and stores
// it. When no symbols exist yet the seed list is used.
type RefreshJob struct {
	stocks *store.StockStore
	client *market.Client
	log    *logger.Logger
}

// NewRefreshJob creates the stock refresh job.
func NewRefreshJob(stocks *store.StockStore, client *market.Client, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		stocks: stocks,
		client: client,
		log:    log.WithComponent("refresh_job"),
	}
}

// Name implements Job.
func (j *RefreshJob) Name() string { return "stock_refresh" }

// Run updates every symbol. A failing symbol is logged and skipped; the
// job fails only when nothing could be refreshed.
func (j *RefreshJob) Run(ctx context.Context) error {
	symbols, err := j.stocks.Symbols(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		symbols = seedSymbols
		j.log.Info("Stock table empty, seeding default symbols", map[string]interface{}{
			"symbols": symbols,
		})
	}

	refreshed := 0
	for _, symbol := range symbols {
		if err := j.refreshSymbol(ctx, symbol); err != nil {
			j.log.Error("Symbol refresh failed", logger.Fields(
				logger.FieldSymbol, symbol,
				logger.FieldError, err.Error(),
			))
			continue
		}
		refreshed++
	}

	if refreshed == 0 && len(symbols) > 0 {
		return fmt.Errorf("refresh: all %d symbols failed", len(symbols))
	}
	j.log.Info("Stocks refreshed", map[string]interface{}{
		"refreshed": refreshed,
		"total":     len(symbols),
	})
	return nil
}

func (j *RefreshJob) refreshSymbol(ctx context.Context, symbol string) error {
	series, err := j.client.Quote(ctx, symbol)
	if err != nil {
		return err
	}

	meta, value, err := series.Latest()
	if err != nil {
		return err
	}
	if err := j.stocks.UpsertMeta(ctx, meta); err != nil {
		return err
	}
	value.MetaID = meta.ID
	return j.stocks.InsertValue(ctx, value)
}

var _ Job = (*RefreshJob)(nil)
