package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWait_RunsHooksInReverseOrder(t *testing.T) {
	h := NewHandler(time.Second)

	var order []int
	h.OnShutdown(func(context.Context) error { order = append(order, 1); return nil })
	h.OnShutdown(func(context.Context) error { order = append(order, 2); return nil })
	h.OnShutdown(func(context.Context) error { order = append(order, 3); return nil })

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()
	h.Trigger()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return")
	}

	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Errorf("hook order = %v, want [3 2 1]", order)
	}
}

func TestWait_ReturnsFirstError(t *testing.T) {
	h := NewHandler(time.Second)

	errA := errors.New("a")
	ran := false
	h.OnShutdown(func(context.Context) error { ran = true; return nil })
	h.OnShutdown(func(context.Context) error { return errA })

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()
	h.Trigger()

	if err := <-errCh; !errors.Is(err, errA) {
		t.Errorf("err = %v, want %v", err, errA)
	}
	if !ran {
		t.Error("later hook did not run after an earlier error")
	}
}

func TestDone_ClosesAfterWait(t *testing.T) {
	h := NewHandler(time.Second)

	select {
	case <-h.Done():
		t.Fatal("Done closed before shutdown")
	default:
	}

	go h.Wait()
	h.Trigger()

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done did not close")
	}
}

func TestTrigger_Idempotent(t *testing.T) {
	h := NewHandler(time.Second)
	go h.Wait()
	h.Trigger()
	h.Trigger() // must not panic
	<-h.Done()
}
