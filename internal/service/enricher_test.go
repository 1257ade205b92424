package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestTaskQueue_RunsSubmittedTasks(t *testing.T) {
	queue := NewTaskQueue(1, 4, zap.NewNop(), nil)
	queue.Start()
	defer queue.Stop()

	done := make(chan struct{})
	ok := queue.Submit(func(ctx context.Context) {
		close(done)
	})
	if !ok {
		t.Fatal("submit rejected with an empty buffer")
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestTaskQueue_FullBufferDropsWithoutBlocking(t *testing.T) {
	// Workers never started, so the buffer fills and stays full.
	queue := NewTaskQueue(1, 2, zap.NewNop(), nil)

	task := func(ctx context.Context) {}
	if !queue.Submit(task) || !queue.Submit(task) {
		t.Fatal("buffer rejected tasks below capacity")
	}

	done := make(chan bool, 1)
	go func() {
		done <- queue.Submit(task)
	}()

	select {
	case accepted := <-done:
		if accepted {
			t.Fatal("submit to a full buffer must report a drop")
		}
	case <-time.After(time.Second):
		t.Fatal("submit blocked on a full buffer")
	}
}

func TestTaskQueue_SurvivesPanickingTask(t *testing.T) {
	queue := NewTaskQueue(1, 4, zap.NewNop(), nil)
	queue.Start()
	defer queue.Stop()

	queue.Submit(func(ctx context.Context) {
		panic("enrichment blew up")
	})

	var ran atomic.Bool
	done := make(chan struct{})
	queue.Submit(func(ctx context.Context) {
		ran.Store(true)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
	if !ran.Load() {
		t.Fatal("worker died after a panicking task")
	}
}

func TestTaskQueue_TaskContextHasDeadline(t *testing.T) {
	queue := NewTaskQueue(1, 1, zap.NewNop(), nil)
	queue.SetTaskTimeout(10 * time.Millisecond)
	queue.Start()
	defer queue.Stop()

	expired := make(chan bool, 1)
	queue.Submit(func(ctx context.Context) {
		select {
		case <-ctx.Done():
			expired <- true
		case <-time.After(2 * time.Second):
			expired <- false
		}
	})

	select {
	case ok := <-expired:
		if !ok {
			t.Fatal("task context never expired")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("task never observed its deadline")
	}
}
