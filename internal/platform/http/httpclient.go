package http

import (
	"net"
	"net/http"
	"time"
)

// DefaultTimeout は呼び出し元がタイムアウトを指定しなかった場合のリクエスト全体のタイムアウトです。
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent は外部APIへ送るUser-Agentです。
const DefaultUserAgent = "btcdata/1.0"

// NewHTTPClient は外部の価格APIを呼び出すためのHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト
//   - MaxIdleConnsPerHost: 提供元は少数のホストなのでホストごとに接続を再利用
//   - Client.Timeout: リクエスト全体のタイムアウト（0以下なら DefaultTimeout）
//   - 全リクエストに Accept: application/json と User-Agent を付与
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にこのクライアントを使用すること
//   - リトライは行わない
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &headerTransport{base: t, userAgent: DefaultUserAgent},
	}
}

// headerTransport は共通ヘッダを付与するRoundTripperです。
type headerTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (h *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTripperはリクエストを変更してはならないため複製する
	r := req.Clone(req.Context())
	if r.Header.Get("Accept") == "" {
		r.Header.Set("Accept", "application/json")
	}
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", h.userAgent)
	}
	return h.base.RoundTrip(r)
}
