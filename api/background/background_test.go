package background

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestGoAndShutdown(t *testing.T) {
	log := logrus.New()
	bg := New(log)

	var ran int32
	bg.Go("ok", func() error {
		atomic.AddInt32(&ran, 1)
		return nil
	})
	bg.Go("fails", func() error {
		atomic.AddInt32(&ran, 1)
		return errors.New("boom")
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := bg.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if got := atomic.LoadInt32(&ran); got != 2 {
		t.Fatalf("expected 2 tasks to run, got %d", got)
	}
}

func TestPanicContained(t *testing.T) {
	log := logrus.New()
	bg := New(log)

	bg.Go("panics", func() error {
		panic("boom")
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := bg.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown after panic: %v", err)
	}
}

func TestShutdownTimeout(t *testing.T) {
	log := logrus.New()
	bg := New(log)

	release := make(chan struct{})
	bg.Go("slow", func() error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := bg.Shutdown(ctx); err == nil {
		t.Fatal("expected shutdown to time out while a task is running")
	}
	close(release)
}
