package scene

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for digest item")
	}
}

func TestDigest_ParallelItemsOverlap(t *testing.T) {
	var d digest
	ctx := context.Background()
	aStarted, bStarted := make(chan struct{}), make(chan struct{})

	doneA := d.enqueue(ctx, true, func(context.Context) error {
		close(aStarted)
		<-bStarted
		return nil
	}, nil)
	doneB := d.enqueue(ctx, true, func(context.Context) error {
		close(bStarted)
		<-aStarted
		return nil
	}, nil)

	waitClosed(t, doneA)
	waitClosed(t, doneB)
}

func TestDigest_ExclusiveWaitsForEarlierWork(t *testing.T) {
	var d digest
	ctx := context.Background()
	release := make(chan struct{})

	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	d.enqueue(ctx, true, func(context.Context) error {
		<-release
		record("parallel")
		return nil
	}, nil)
	exclusive := d.enqueue(ctx, false, func(context.Context) error {
		record("exclusive")
		return nil
	}, nil)
	after := d.enqueue(ctx, true, func(context.Context) error {
		record("after")
		return nil
	}, nil)

	select {
	case <-exclusive:
		t.Fatal("exclusive item ran before the parallel item finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	waitClosed(t, exclusive)
	waitClosed(t, after)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"parallel", "exclusive", "after"}, order)
}

func TestDigest_FailuresAreContained(t *testing.T) {
	var d digest
	ctx := context.Background()

	var mu sync.Mutex
	var errs []error
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	}

	waitClosed(t, d.enqueue(ctx, false, func(context.Context) error { return errors.New("boom") }, fail))
	waitClosed(t, d.enqueue(ctx, false, func(context.Context) error { panic("kaboom") }, fail))
	waitClosed(t, d.enqueue(ctx, false, func(context.Context) error { return nil }, fail))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, errs, 2)
	assert.EqualError(t, errs[0], "boom")
	assert.Contains(t, errs[1].Error(), "kaboom")
}
