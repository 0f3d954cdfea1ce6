package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"btc_backend/internal/feature/marketdata/adapters"
	"btc_backend/internal/feature/marketdata/adapters/coingecko/dto"
	"btc_backend/internal/feature/marketdata/domain/entity"
	"btc_backend/internal/feature/marketdata/usecase"
)

const coinID = "bitcoin"

// Client はCoinGecko APIからBTCの価格・市場データ・履歴を取得するHistoricalProvider実装です。
type Client struct {
	req *adapters.Requester
}

// ClientがHistoricalProviderを実装していることをコンパイル時に検証します。
var _ usecase.HistoricalProvider = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientを生成します。
// clientがnilなら cfg.Timeout のクライアントを、WithLimiter がなければ
// cfg.RequestsPerMinute のレートリミッタを使います。
func NewClient(cfg Config, client *http.Client, opts ...adapters.Option) *Client {
	header := http.Header{}
	if cfg.APIKey != "" {
		header.Set(APIKeyHeader, cfg.APIKey)
	}
	d := adapters.ProviderDefaults{Timeout: cfg.Timeout, RequestsPerMinute: cfg.RequestsPerMinute}
	return &Client{req: adapters.NewProviderRequester(entity.SourceCoinGecko, cfg.baseURL(), d, client, header, opts...)}
}

// Source は提供元を返します。
func (c *Client) Source() entity.Source { return entity.SourceCoinGecko }

// FetchCurrentPrice はUSD/EUR/GBPの現在価格と時価総額・24時間出来高・24時間変化率を取得します。
func (c *Client) FetchCurrentPrice(ctx context.Context) (*entity.FetchResult[entity.PriceSnapshot], error) {
	const op = "current_price"

	vs := make([]string, len(adapters.QuoteCurrencies))
	for i, cur := range adapters.QuoteCurrencies {
		vs[i] = strings.ToLower(cur)
	}
	q := url.Values{}
	q.Set("ids", coinID)
	q.Set("vs_currencies", strings.Join(vs, ","))
	q.Set("include_market_cap", "true")
	q.Set("include_24hr_vol", "true")
	q.Set("include_24hr_change", "true")

	var body dto.SimplePriceResponse
	if err := c.req.GetJSON(ctx, op, "/simple/price", q, &body); err != nil {
		return nil, err
	}
	fields, ok := body[coinID]
	if !ok || len(fields) == 0 {
		return nil, c.noData(op)
	}

	quotes := make(map[string]entity.Quote, len(adapters.QuoteCurrencies))
	for _, cur := range adapters.QuoteCurrencies {
		k := strings.ToLower(cur)
		price, ok := fields[k]
		if !ok {
			continue
		}
		quotes[cur] = entity.Quote{
			Price:        price,
			MarketCap:    fields[k+"_market_cap"],
			Volume24h:    fields[k+"_24h_vol"],
			Change24hPct: fields[k+"_24h_change"],
		}
	}
	if len(quotes) == 0 {
		return nil, c.noData(op)
	}
	return entity.NewFetchResult(c.Source(), c.req.Now(), entity.PriceSnapshot{Quotes: quotes}), nil
}

// FetchMarketSnapshot はコインの詳細な市場データ（market_data）を取得します。
func (c *Client) FetchMarketSnapshot(ctx context.Context) (*entity.FetchResult[entity.MarketSnapshot], error) {
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("market_data", "true")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")

	var body dto.CoinResponse
	if err := c.req.GetJSON(ctx, "market_data", "/coins/"+coinID, q, &body); err != nil {
		return nil, err
	}
	return entity.NewFetchResult(c.Source(), c.req.Now(), entity.MarketSnapshot{
		ID:      body.ID,
		Symbol:  body.Symbol,
		Name:    body.Name,
		Details: body.MarketData,
	}), nil
}

// FetchHistoricalSeries は日足（interval=daily）の価格・時価総額・出来高の系列を取得します。
// daysは1〜365に丸められます。
func (c *Client) FetchHistoricalSeries(ctx context.Context, days int) (*entity.FetchResult[entity.HistoricalSeries], error) {
	return c.marketChart(ctx, "historical", usecase.ClampDays(days), true)
}

// FetchIntradaySeries は提供元の自動粒度（1日なら約5分、2〜90日なら1時間）の系列を取得します。
func (c *Client) FetchIntradaySeries(ctx context.Context, days int) (*entity.FetchResult[entity.HistoricalSeries], error) {
	return c.marketChart(ctx, "intraday", usecase.ClampDays(days), false)
}

func (c *Client) marketChart(ctx context.Context, op string, days int, daily bool) (*entity.FetchResult[entity.HistoricalSeries], error) {
	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("days", strconv.Itoa(days))
	if daily {
		q.Set("interval", "daily")
	}

	var body dto.MarketChartResponse
	if err := c.req.GetJSON(ctx, op, "/coins/"+coinID+"/market_chart", q, &body); err != nil {
		return nil, err
	}
	return entity.NewFetchResult(c.Source(), c.req.Now(), entity.HistoricalSeries{
		Days:       days,
		Prices:     toPoints(body.Prices),
		MarketCaps: toPoints(body.MarketCaps),
		Volumes:    toPoints(body.TotalVolumes),
	}), nil
}

func (c *Client) noData(op string) error {
	return &usecase.UpstreamRequestError{
		Source:    c.Source(),
		Operation: op,
		Err:       fmt.Errorf("%w: %s missing from response", usecase.ErrNoData, coinID),
	}
}

func toPoints(pairs [][2]float64) []entity.PricePoint {
	out := make([]entity.PricePoint, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, entity.PricePoint{TimestampMillis: int64(p[0]), Value: p[1]})
	}
	return out
}
