package cli

import (
	"testing"
	"time"
)

func TestSetupSignalHandler(t *testing.T) {
	ctx := SetupSignalHandler()

	// Context should not be cancelled initially
	select {
	case <-ctx.Done():
		t.Error("Context should not be cancelled initially")
	default:
		// Expected
	}

	// Context should have a Done channel
	if ctx.Done() == nil {
		t.Error("Context should have a Done channel")
	}
}

func TestSetupSignalHandlerStaysActive(t *testing.T) {
	ctx := SetupSignalHandler()

	// With no signal delivered the context must stay active
	select {
	case <-ctx.Done():
		t.Error("Context cancelled too early")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}
}

func TestContextCancellationFlow(t *testing.T) {
	// Test that we can use the context in a typical watcher shutdown flow
	ctx := SetupSignalHandler()

	watcherDone := make(chan bool)

	// Simulate watcher goroutine
	go func() {
		<-ctx.Done()
		watcherDone <- true
	}()

	// Context should still be active
	select {
	case <-watcherDone:
		t.Error("Watcher should not be done yet")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}
}
