package colorbook

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPendingPoll(t *testing.T) {
	release := make(chan struct{})
	p := LoadAsync(context.Background(), func(context.Context) (int, error) {
		<-release
		return 42, nil
	})
	if _, ok := p.Poll(); ok {
		t.Fatal("Poll reported done before the load finished")
	}
	close(release)

	r, err := p.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if r.Value != 42 || r.Err != nil {
		t.Errorf("result = %+v", r)
	}
	// Poll keeps returning the result after Wait.
	if r, ok := p.Poll(); !ok || r.Value != 42 {
		t.Errorf("Poll after Wait = %+v, %v", r, ok)
	}
}

func TestPendingError(t *testing.T) {
	want := errors.New("boom")
	p := LoadAsync(context.Background(), func(context.Context) (string, error) {
		return "", want
	})
	r, err := p.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(r.Err, want) {
		t.Errorf("Err = %v, want %v", r.Err, want)
	}
}

func TestPendingCancel(t *testing.T) {
	p := LoadAsync(context.Background(), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	p.Cancel()
	r, err := p.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(r.Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", r.Err)
	}
}

func TestPendingWaitTimeout(t *testing.T) {
	p := LoadAsync(context.Background(), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, nil
	})
	defer p.Cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait err = %v, want deadline exceeded", err)
	}
}
