package session

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/perceptlab/buttonbox/internal/models"
)

func TestWaitReturnsMatchingPress(t *testing.T) {
	ch := &fakeChannel{}
	ch.queue("PRESSED 2")

	w := NewPressWaiter(ch, time.Millisecond, nil)
	press, err := w.Wait(100*time.Millisecond, []models.ButtonIndex{2})
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if press == nil {
		t.Fatal("Expected a press, got miss")
	}
	if press.Button != 2 {
		t.Errorf("Expected button 2, got %d", press.Button)
	}
}

func TestWaitIgnoresUnexpectedButton(t *testing.T) {
	ch := &fakeChannel{}
	ch.queue("PRESSED 1")

	w := NewPressWaiter(ch, time.Millisecond, nil)
	start := time.Now()
	press, err := w.Wait(30*time.Millisecond, []models.ButtonIndex{2})
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if press != nil {
		t.Fatalf("Press for non-expected button must be discarded, got %+v", press)
	}
	// The discarded press must not cut the wait short.
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("Wait returned after %v, before the deadline", elapsed)
	}
}

func TestWaitDiscardsMalformedLines(t *testing.T) {
	ch := &fakeChannel{}
	ch.queue("READY", "PRESSED x", "", "PRESSED 3")

	w := NewPressWaiter(ch, time.Millisecond, nil)
	press, err := w.Wait(100*time.Millisecond, []models.ButtonIndex{3})
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if press == nil || press.Button != 3 {
		t.Fatalf("Expected press of 3 after noise lines, got %+v", press)
	}
}

func TestWaitDeadline(t *testing.T) {
	ch := &fakeChannel{}
	w := NewPressWaiter(ch, time.Millisecond, nil)

	start := time.Now()
	press, err := w.Wait(20*time.Millisecond, []models.ButtonIndex{0})
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if press != nil {
		t.Fatalf("Expected miss, got %+v", press)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("Wait returned after %v, before the deadline", elapsed)
	}
}

func TestWaitCancellation(t *testing.T) {
	ch := &fakeChannel{}
	var cancel atomic.Bool

	w := NewPressWaiter(ch, time.Millisecond, cancel.Load)

	done := make(chan struct{})
	go func() {
		press, err := w.Wait(5*time.Second, []models.ButtonIndex{0})
		if err != nil {
			t.Errorf("Wait failed: %v", err)
		}
		if press != nil {
			t.Errorf("Cancelled wait must report no result, got %+v", press)
		}
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel.Store(true)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not observe cancellation")
	}
}

func TestWaitTransportError(t *testing.T) {
	ch := &fakeChannel{readErr: fmt.Errorf("port gone")}
	w := NewPressWaiter(ch, time.Millisecond, nil)

	_, err := w.Wait(50*time.Millisecond, []models.ButtonIndex{0})
	if err == nil {
		t.Fatal("Expected transport error to propagate")
	}
}
