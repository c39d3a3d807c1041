package slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

func TestLocalLimiterBlocksAtMax(t *testing.T) {
	l := NewLocal(2)
	r1, err := l.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire 1: %v", err)
	}
	r2, err := l.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire 2: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := l.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("third acquire: want deadline exceeded, got %v", err)
	}

	r1()
	r1() // double release must not free a second slot
	r3, err := l.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}

	ctx2, cancel2 := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel2()
	if _, err := l.Acquire(ctx2); err == nil {
		t.Fatalf("expected limiter to be full after double release")
	}
	r2()
	r3()
}

func TestNewWithoutRedisIsLocal(t *testing.T) {
	l, err := New(context.Background(), logger.Nop(), Config{Max: 0})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := l.(*local); !ok {
		t.Fatalf("expected in-process limiter, got %T", l)
	}
	release, err := l.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release()
	_ = l.Close()
}
