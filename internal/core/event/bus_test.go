package event

import "testing"

type ping struct{ N int }
type pong struct{ S string }

func TestEventsDispatchOneTickLater(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(p ping) { got = append(got, p.N) })

	Emit(b, ping{N: 1})
	Emit(b, ping{N: 2})
	if n := b.DispatchAll(); n != 0 {
		t.Fatalf("expected nothing dispatched before the swap, got %d", n)
	}

	b.SwapBuffers()
	if n := b.DispatchAll(); n != 2 {
		t.Fatalf("expected 2 events dispatched, got %d", n)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected events in emission order, got %v", got)
	}

	b.SwapBuffers()
	got = nil
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("expected front buffer to be empty after second swap, got %v", got)
	}
}

func TestDispatchOrderFollowsFirstSeenType(t *testing.T) {
	b := NewBus()
	var trail []string
	Subscribe(b, func(p pong) { trail = append(trail, "pong:"+p.S) })
	Subscribe(b, func(p ping) { trail = append(trail, "ping") })

	Emit(b, ping{})
	Emit(b, pong{S: "a"})
	b.SwapBuffers()
	b.DispatchAll()

	if len(trail) != 2 || trail[0] != "pong:a" || trail[1] != "ping" {
		t.Fatalf("expected pong before ping (subscription order), got %v", trail)
	}
}

func TestEmitOnNilBusIsNoop(t *testing.T) {
	var b *Bus
	Emit(b, ping{N: 1})
}
