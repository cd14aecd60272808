package marketdata

import (
	"context"
	"time"

	"github.com/tradewell/trade-analytics-go/internal/models"
)

// Provider fetches a daily OHLC series for one resolved provider symbol.
// Implementations must tolerate unknown or delisted symbols by returning an
// error for that symbol only; the fetcher turns it into an empty series.
type Provider interface {
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]models.DailyBar, error)
}

// symbolAliases maps journal ticker symbols to the provider's symbols.
// Futures roots need the =F suffix; index and ETF tickers pass through.
var symbolAliases = map[string]string{
	"ES":  "ES=F",
	"NQ":  "NQ=F",
	"MES": "MES=F",
	"MNQ": "MNQ=F",
	"GC":  "GC=F",
	"MGC": "MGC=F",
	"SI":  "SI=F",
	"CL":  "CL=F",
	"VIX": "^VIX",
	"DXY": "DX-Y.NYB",
}

// ResolveSymbol maps a journal ticker to the provider symbol, passing
// unknown tickers through unchanged.
func ResolveSymbol(ticker string) string {
	if alias, ok := symbolAliases[ticker]; ok {
		return alias
	}
	return ticker
}
