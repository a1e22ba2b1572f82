// ABOUTME: Tests for the typed event bus
// ABOUTME: Covers subscribe, publish counts, unsubscribe, and concurrent access

package eventbus

import (
	"strings"
	"sync"
	"testing"
)

func TestBus_PublishSubscribe(t *testing.T) {
	t.Parallel()

	bus := New[ModelsChanged]()
	var received string

	bus.Subscribe(func(ev ModelsChanged) {
		received = ev.Source
	})

	if n := bus.Publish(ModelsChanged{Source: "config.json"}); n != 1 {
		t.Errorf("Publish delivered to %d handlers, want 1", n)
	}
	if received != "config.json" {
		t.Errorf("received = %q, want %q", received, "config.json")
	}
}

func TestBus_MultipleSubscribers(t *testing.T) {
	t.Parallel()

	bus := New[int]()
	var sum int
	var mu sync.Mutex

	for range 3 {
		bus.Subscribe(func(n int) {
			mu.Lock()
			sum += n
			mu.Unlock()
		})
	}

	bus.Publish(10)

	mu.Lock()
	defer mu.Unlock()
	if sum != 30 {
		t.Errorf("sum = %d, want 30", sum)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	t.Parallel()

	bus := New[SessionEvent]()
	called := false

	unsub := bus.Subscribe(func(SessionEvent) {
		called = true
	})

	unsub()
	unsub()
	if n := bus.Publish(SessionEvent{Kind: SessionClosed, ID: "s1"}); n != 0 {
		t.Errorf("Publish delivered to %d handlers, want 0", n)
	}
	if called {
		t.Error("handler should not be called after unsubscribe")
	}
}

func TestBus_ConcurrentPublishAndSubscribe(t *testing.T) {
	t.Parallel()

	bus := New[int]()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsub := bus.Subscribe(func(int) {})
			if i%2 == 0 {
				unsub()
			}
		}()
		go func() {
			defer wg.Done()
			bus.Publish(i)
		}()
	}
	wg.Wait()

	if got := bus.Count(); got != 10 {
		t.Errorf("Count() = %d, want 10", got)
	}
}

func TestSessionEventKindString(t *testing.T) {
	t.Parallel()

	if SessionOpened.String() != "opened" || SessionClosed.String() != "closed" {
		t.Errorf("unexpected kind names: %s %s", SessionOpened, SessionClosed)
	}
}

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	t.Parallel()

	var bus Bus[string]
	var got []string
	for _, name := range []string{"a", "b", "c", "d"} {
		unsub := bus.Subscribe(func(string) { got = append(got, name) })
		if name == "b" {
			defer unsub()
		}
	}
	bus.Publish("x")

	want := "abcd"
	if s := strings.Join(got, ""); s != want {
		t.Errorf("delivery order = %q, want %q", s, want)
	}
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	t.Parallel()

	bus := New[int]()
	var calls int
	var unsubSecond func()
	bus.Subscribe(func(int) {
		calls++
		unsubSecond()
	})
	unsubSecond = bus.Subscribe(func(int) { calls++ })

	if n := bus.Publish(1); n != 2 {
		t.Errorf("first Publish delivered to %d, want 2", n)
	}
	if n := bus.Publish(2); n != 1 {
		t.Errorf("second Publish delivered to %d, want 1", n)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}
