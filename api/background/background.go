// Package background runs fire-and-forget tasks, mainly email dispatch.
// Failures are logged and never surfaced to the request that spawned them.
package background

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

type Background struct {
	log logrus.FieldLogger
	wg  sync.WaitGroup
}

func New(log logrus.FieldLogger) *Background {
	return &Background{log: log}
}

// Go runs fn on its own goroutine. The task is tracked so Shutdown can
// wait for it, and a panic inside fn is contained and logged.
func (b *Background) Go(name string, fn func() error) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		defer func() {
			if rec := recover(); rec != nil {
				b.log.WithFields(logrus.Fields{
					"task":  name,
					"panic": fmt.Sprintf("%v", rec),
					"stack": string(debug.Stack()),
				}).Error("background task panicked")
			}
		}()

		if err := fn(); err != nil {
			b.log.WithFields(logrus.Fields{
				"task":    name,
				"message": err,
			}).Error("background task failed")
		}
	}()
}

// Shutdown waits for in-flight tasks to drain or the context to expire.
func (b *Background) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("background tasks still running: %w", ctx.Err())
	}
}
