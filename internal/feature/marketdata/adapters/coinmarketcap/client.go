package coinmarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"btc_backend/internal/feature/marketdata/adapters"
	"btc_backend/internal/feature/marketdata/adapters/coinmarketcap/dto"
	"btc_backend/internal/feature/marketdata/domain/entity"
	"btc_backend/internal/feature/marketdata/usecase"
)

const symbol = "BTC"

// Client はCoinMarketCap APIから価格・コイン情報・市場全体の指標を取得します。
// 履歴データは無料枠で提供されないため HistoricalProvider は実装しません。
type Client struct {
	req *adapters.Requester
}

var (
	_ usecase.Provider              = (*Client)(nil)
	_ usecase.GlobalMetricsProvider = (*Client)(nil)
)

// NewClient は指定された設定とHTTPクライアントでClientを生成します。
// clientがnilなら cfg.Timeout のクライアントを、WithLimiter がなければ
// cfg.RequestsPerMinute のレートリミッタを使います。
func NewClient(cfg Config, client *http.Client, opts ...adapters.Option) *Client {
	header := http.Header{}
	if cfg.APIKey != "" {
		header.Set(APIKeyHeader, cfg.APIKey)
	}
	d := adapters.ProviderDefaults{Timeout: cfg.Timeout, RequestsPerMinute: cfg.RequestsPerMinute}
	return &Client{req: adapters.NewProviderRequester(entity.SourceCoinMarketCap, cfg.baseURL(), d, client, header, opts...)}
}

// Source は提供元を返します。
func (c *Client) Source() entity.Source { return entity.SourceCoinMarketCap }

// FetchCurrentPrice はUSD/EUR/GBP建ての最新の相場を取得します。
func (c *Client) FetchCurrentPrice(ctx context.Context) (*entity.FetchResult[entity.PriceSnapshot], error) {
	const op = "current_price"

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("convert", strings.Join(adapters.QuoteCurrencies, ","))

	var body dto.QuotesLatestResponse
	if err := c.req.GetJSON(ctx, op, "/cryptocurrency/quotes/latest", q, &body); err != nil {
		return nil, err
	}
	if err := c.checkStatus(op, body.Status); err != nil {
		return nil, err
	}
	btc, ok := body.Data[symbol]
	if !ok {
		return nil, c.noData(op)
	}

	quotes := make(map[string]entity.Quote, len(btc.Quote))
	for _, cur := range adapters.QuoteCurrencies {
		qd, ok := btc.Quote[cur]
		if !ok {
			continue
		}
		quotes[cur] = entity.Quote{
			Price:        qd.Price,
			MarketCap:    qd.MarketCap,
			Volume24h:    qd.Volume24h,
			Change24hPct: qd.PercentChange24h,
		}
	}
	if len(quotes) == 0 {
		return nil, c.noData(op)
	}
	return entity.NewFetchResult(c.Source(), c.req.Now(), entity.PriceSnapshot{Quotes: quotes}), nil
}

// FetchMarketSnapshot はコインの基本情報（ロゴ・説明・URLなど）を取得します。
// 情報全体はDetailsにそのまま保持します。
func (c *Client) FetchMarketSnapshot(ctx context.Context) (*entity.FetchResult[entity.MarketSnapshot], error) {
	const op = "info"

	q := url.Values{}
	q.Set("symbol", symbol)

	var body dto.InfoResponse
	if err := c.req.GetJSON(ctx, op, "/cryptocurrency/info", q, &body); err != nil {
		return nil, err
	}
	if err := c.checkStatus(op, body.Status); err != nil {
		return nil, err
	}
	raw, ok := body.Data[symbol]
	if !ok {
		return nil, c.noData(op)
	}
	var info dto.InfoEntry
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, &usecase.UpstreamRequestError{Source: c.Source(), Operation: op, Err: fmt.Errorf("decode info: %w", err)}
	}

	return entity.NewFetchResult(c.Source(), c.req.Now(), entity.MarketSnapshot{
		ID:      strconv.Itoa(info.ID),
		Symbol:  info.Symbol,
		Name:    info.Name,
		Details: raw,
	}), nil
}

// FetchGlobalMetrics は暗号資産市場全体の指標（USD建て）を取得します。
func (c *Client) FetchGlobalMetrics(ctx context.Context) (*entity.FetchResult[entity.GlobalMetrics], error) {
	const op = "global_metrics"

	q := url.Values{}
	q.Set("convert", "USD")

	var body dto.GlobalMetricsResponse
	if err := c.req.GetJSON(ctx, op, "/global-metrics/quotes/latest", q, &body); err != nil {
		return nil, err
	}
	if err := c.checkStatus(op, body.Status); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 || string(body.Data) == "null" {
		return nil, c.noData(op)
	}
	var data dto.GlobalMetricsData
	if err := json.Unmarshal(body.Data, &data); err != nil {
		return nil, &usecase.UpstreamRequestError{Source: c.Source(), Operation: op, Err: fmt.Errorf("decode global metrics: %w", err)}
	}

	usd := data.Quote["USD"]
	return entity.NewFetchResult(c.Source(), c.req.Now(), entity.GlobalMetrics{
		ActiveCryptocurrencies: data.ActiveCryptocurrencies,
		BTCDominance:           data.BTCDominance,
		ETHDominance:           data.ETHDominance,
		TotalMarketCap:         usd.TotalMarketCap,
		TotalVolume24h:         usd.TotalVolume24h,
		Details:                body.Data,
	}), nil
}

// checkStatus はHTTP 200でもstatus.error_codeが0以外ならエラーとして扱います。
func (c *Client) checkStatus(op string, st dto.Status) error {
	if st.ErrorCode == 0 {
		return nil
	}
	return &usecase.UpstreamRequestError{
		Source:    c.Source(),
		Operation: op,
		Err:       fmt.Errorf("error_code %d: %s", st.ErrorCode, st.ErrorMessage),
	}
}

func (c *Client) noData(op string) error {
	return &usecase.UpstreamRequestError{
		Source:    c.Source(),
		Operation: op,
		Err:       fmt.Errorf("%w: %s missing from response", usecase.ErrNoData, symbol),
	}
}
