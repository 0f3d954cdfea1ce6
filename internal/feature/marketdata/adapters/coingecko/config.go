// Package coingecko はCoinGecko APIのクライアントを提供します。
package coingecko

import "time"

// DefaultBaseURL はCoinGecko公開APIのベースURLです。
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// APIKeyHeader はPro APIキーを送るヘッダ名です。
const APIKeyHeader = "x-cg-pro-api-key"

// Config はCoinGecko APIクライアントの設定を保持します。
type Config struct {
	APIKey            string        // 任意。空なら無料枠として匿名で呼び出す
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
