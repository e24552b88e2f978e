// README: Observable value tests (replay, equality gate, unsubscribe).
package observe

import "testing"

func intEq(a, b int) bool { return a == b }

func TestSubscribeReplaysCurrent(t *testing.T) {
	v := NewValue(42, intEq)

	var got []int
	v.Subscribe(func(n int) { got = append(got, n) })

	if len(got) != 1 || got[0] != 42 {
		t.Fatalf("expected replay of 42, got %v", got)
	}
}

func TestSetNotifiesOnChangeOnly(t *testing.T) {
	v := NewValue(0, intEq)

	var got []int
	v.Subscribe(func(n int) { got = append(got, n) })

	v.Set(1)
	v.Set(1) // unchanged, gated
	v.Set(2)

	want := []int{0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("expected %v notifications, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestGatedSetStillStoresValue(t *testing.T) {
	type profile struct {
		ID       string
		Interval int
	}
	sameID := func(a, b profile) bool { return a.ID == b.ID }
	v := NewValue(profile{ID: "u1", Interval: 120}, sameID)

	count := 0
	v.Subscribe(func(profile) { count++ })

	// Same identity, different payload: no notification, but the cell
	// must hold the latest value for Get and replay.
	v.Set(profile{ID: "u1", Interval: 60})

	if count != 1 {
		t.Fatalf("expected only the replay notification, got %d", count)
	}
	if got := v.Get(); got.Interval != 60 {
		t.Fatalf("Get returned stale interval %d, want 60", got.Interval)
	}

	var replayed profile
	v.Subscribe(func(p profile) { replayed = p })
	if replayed.Interval != 60 {
		t.Fatalf("replay delivered stale interval %d, want 60", replayed.Interval)
	}
}

func TestNilEqualityAlwaysNotifies(t *testing.T) {
	v := NewValue(0, nil)

	count := 0
	v.Subscribe(func(int) { count++ })

	v.Set(5)
	v.Set(5)

	if count != 3 { // replay + two sets
		t.Fatalf("expected 3 notifications, got %d", count)
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	v := NewValue(0, intEq)

	count := 0
	unsub := v.Subscribe(func(int) { count++ })
	unsub()
	unsub() // second call is a no-op

	v.Set(1)

	if count != 1 {
		t.Fatalf("expected only the replay notification, got %d", count)
	}
}

func TestMultipleSubscribersAllNotified(t *testing.T) {
	v := NewValue(0, intEq)

	a, b := 0, 0
	v.Subscribe(func(n int) { a = n })
	v.Subscribe(func(n int) { b = n })

	v.Set(7)

	if a != 7 || b != 7 {
		t.Fatalf("expected both subscribers at 7, got a=%d b=%d", a, b)
	}
}
