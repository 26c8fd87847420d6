package sync

import "testing"

func TestGateAvailabilityTransitions(t *testing.T) {
	gate := NewGate()
	var events []bool
	gate.OnChange(func(available bool) {
		events = append(events, available)
	})

	gate.SetOnline(true)
	if gate.Available() {
		t.Fatalf("online but unauthenticated should not be available")
	}
	if len(events) != 0 {
		t.Fatalf("no availability change yet, got %v", events)
	}

	gate.SetAuthenticated(true)
	if !gate.Available() {
		t.Fatalf("online and authenticated should be available")
	}

	// 重复设置同一状态不触发回调
	gate.SetOnline(true)

	gate.SetOnline(false)
	if gate.Available() {
		t.Fatalf("offline should not be available")
	}

	want := []bool{true, false}
	if len(events) != len(want) {
		t.Fatalf("events want %v got %v", want, events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events want %v got %v", want, events)
		}
	}
}
