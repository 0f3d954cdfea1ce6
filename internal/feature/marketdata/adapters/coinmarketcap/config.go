// Package coinmarketcap はCoinMarketCap APIのクライアントを提供します。
package coinmarketcap

import "time"

// DefaultBaseURL はCoinMarketCap Pro APIのベースURLです。
const DefaultBaseURL = "https://pro-api.coinmarketcap.com/v1"

// APIKeyHeader はAPIキーを送るヘッダ名です。
const APIKeyHeader = "X-CMC_PRO_API_KEY"

// Config はCoinMarketCap APIクライアントの設定を保持します。
type Config struct {
	APIKey            string        // 空の場合はヘッダを送らない（ほとんどのエンドポイントは401になる）
	BaseURL           string        // APIのベースURL（空ならDefaultBaseURL）
	Timeout           time.Duration // HTTPリクエストタイムアウト
	RequestsPerMinute int           // レート制限（0以下なら無制限）
}

func (c Config) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}
