package event

import "testing"

func TestQueueFlushDeliversAndClears(t *testing.T) {
	var q Queue
	q.Push(GameReset())
	q.Push(Tsunami(3.5))

	var got []Event
	q.Flush(DispatcherFunc(func(events []Event) { got = append(got, events...) }))

	if len(got) != 2 {
		t.Fatalf("expected 2 events delivered, got %d", len(got))
	}
	if got[1].Kind != KindTsunami || got[1].TsunamiX != 3.5 {
		t.Fatalf("expected tsunami event with x=3.5, got %+v", got[1])
	}

	var got2 []Event
	q.Flush(DispatcherFunc(func(events []Event) { got2 = append(got2, events...) }))
	if len(got2) != 0 {
		t.Fatal("expected queue to be empty after flush")
	}
}

func TestFlushWithNilDispatcherClearsWithoutPanicking(t *testing.T) {
	var q Queue
	q.Push(GameReset())
	q.Flush(nil)
	if len(q.pending) != 0 {
		t.Fatal("expected queue cleared even with a nil dispatcher")
	}
}
