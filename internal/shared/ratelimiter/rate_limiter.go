package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimiterは、固定ウィンドウ方式でAPI呼び出しの頻度を制限します。
// 複数のgoroutineから共有できます。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int           // interval あたりの上限（0以下なら無制限）
	interval  time.Duration // どの単位でリセットするか
	count     int
	lastReset time.Time
	now       func() time.Time
	logger    *slog.Logger
}

var _ Limiter = (*RateLimiter)(nil)

// Option はRateLimiterの設定を変更します。
type Option func(*RateLimiter)

// WithLogger は待機時の警告を出力するロガーを設定します。
func WithLogger(l *slog.Logger) Option {
	return func(rl *RateLimiter) {
		if l != nil {
			rl.logger = l
		}
	}
}

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration, opts ...Option) *RateLimiter {
	rl := &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Waitはレートリミットの上限に達しているかを確認し、必要であれば次のウィンドウまで待機します。
// 待機中はロックを保持しないため、他の呼び出し元もそれぞれのctxで中断できます。
// 待機中にctxがキャンセルされた場合はctx.Err()を返し、呼び出しはカウントされません。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil || rl.limit <= 0 || rl.interval <= 0 {
		return ctx.Err()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sleep, ok := rl.reserve()
		if ok {
			return nil
		}

		rl.logger.Warn("rate limit reached, waiting", "limit", rl.limit, "wait", sleep)
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		// 起床後にウィンドウを再確認する（他の待機者が先に枠を取った場合はもう一度待つ）
	}
}

// reserve は枠が空いていればカウントして true を返し、
// 空いていなければ次のウィンドウまでの待ち時間を返します。
func (rl *RateLimiter) reserve() (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}
	if rl.count < rl.limit {
		rl.count++
		return 0, true
	}
	return rl.interval - now.Sub(rl.lastReset), false
}
