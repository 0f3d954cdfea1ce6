package ratelimiter

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRateLimiter_WithinLimit は上限内の呼び出しが待機しないことを検証します。
func TestRateLimiter_WithinLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Hour)
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

// TestRateLimiter_WaitsForNextWindow は上限を超えた呼び出しが次のウィンドウまで待機することを検証します。
func TestRateLimiter_WaitsForNextWindow(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(2, 80*time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

// TestRateLimiter_ContextCancelled は待機中のキャンセルでエラーを返すことを検証します。
func TestRateLimiter_ContextCancelled(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Equal(t, 1, rl.count)
}

// TestRateLimiter_WaitersCancelIndependently は一方の待機者が眠っている間も
// 他の待機者が自分のctxの期限で戻れることを検証します。
func TestRateLimiter_WaitersCancelIndependently(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	// 1人目の待機者はウィンドウ終了まで眠る
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() { firstDone <- rl.Wait(firstCtx) }()
	time.Sleep(20 * time.Millisecond)

	// 2人目は自分の期限で戻る
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)

	cancelFirst()
	select {
	case err := <-firstDone:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("first waiter did not return after cancel")
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Equal(t, 1, rl.count)
}

// TestRateLimiter_WaitRechecksWindow は起床後に枠を取り直し、同時に起きた待機者が上限を超えないことを検証します。
func TestRateLimiter_WaitRechecksWindow(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 60*time.Millisecond)
	require.NoError(t, rl.Wait(context.Background()))

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, rl.Wait(context.Background()))
		}()
	}
	wg.Wait()

	// 2人の待機者は別々のウィンドウで通過する
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

// TestRateLimiter_WithLogger は待機時の警告が注入したロガーに出力されることを検証します。
func TestRateLimiter_WithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	rl := NewRateLimiter(1, time.Hour, WithLogger(logger))
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rl.Wait(ctx), context.DeadlineExceeded)

	assert.Contains(t, buf.String(), "rate limit reached")
	assert.Contains(t, buf.String(), "limit=1")
}

// TestRateLimiter_Unlimited は上限0以下で制限しないことを検証します。
func TestRateLimiter_Unlimited(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0, time.Hour)
	for i := 0; i < 100; i++ {
		require.NoError(t, rl.Wait(context.Background()))
	}

	var nilLimiter *RateLimiter
	assert.NoError(t, nilLimiter.Wait(context.Background()))
}

// TestRateLimiter_Concurrent は複数goroutineから安全に使えることを検証します。
func TestRateLimiter_Concurrent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(50, time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, rl.Wait(context.Background()))
		}()
	}
	wg.Wait()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Equal(t, 50, rl.count)
}
