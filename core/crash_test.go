package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoRunsFunction(t *testing.T) {
	done := make(chan int, 1)
	Go(func() { done <- 42 })

	select {
	case v := <-done:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		require.FailNow(t, "goroutine did not run")
	}
}

func TestHandleCrashIgnoresNil(t *testing.T) {
	called := false
	SetCrashHandler(func(any) { called = true })
	t.Cleanup(func() { SetCrashHandler(nil) })

	HandleCrash(nil)
	assert.False(t, called)
}
