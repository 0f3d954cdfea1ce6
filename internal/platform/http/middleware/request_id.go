// Package middleware はgin用の共通ミドルウェアを提供します。
package middleware

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// RequestIDHeader はリクエストIDを受け渡すヘッダ名です。
const RequestIDHeader = "X-Request-ID"

// requestIDKey はgin.Contextに保存するキーです。
const requestIDKey = "request_id"

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// NewRequestID は時刻順に並ぶULID文字列を返します。
func NewRequestID() string {
	mu.Lock()
	defer mu.Unlock()

	return newRequestID(time.Now().UTC(), mono)
}

func newRequestID(at time.Time, entropy io.Reader) string {
	id, err := ulid.New(ulid.Timestamp(at), entropy)
	if err != nil {
		// 単調増加の桁あふれなどエントロピー源のエラー時は ulid.Make の既定エントロピーで採番する
		return ulid.Make().String()
	}
	return id.String()
}

// RequestID はリクエストごとにIDを払い出し、レスポンスヘッダとアクセスログに付与します。
// クライアントが X-Request-ID を送ってきた場合はそれを引き継ぎます。
func RequestID(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = NewRequestID()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		logger.Info("request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

// GetRequestID はコンテキストに保存されたリクエストIDを返します。
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
