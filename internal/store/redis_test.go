package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	r := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), fmt.Sprintf("redis://%s", r.Addr()))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLogPath(t *testing.T) {
	tests := []struct {
		contact string
		want    string
	}{
		{"alice@example.com", "userActivities/alice@example,com"},
		{"a.b.c@example.co.uk", "userActivities/a,b,c@example,co,uk"},
		{"nodots@localhost", "userActivities/nodots@localhost"},
	}

	for _, tt := range tests {
		if got := LogPath(tt.contact); got != tt.want {
			t.Errorf("LogPath(%q) = %q, want %q", tt.contact, got, tt.want)
		}
	}
}

func TestAppendAssignsOrderedKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	path := LogPath("alice@example.com")

	k1, err := s.Append(ctx, path, map[string]string{"n": "one"})
	if err != nil {
		t.Fatal(err)
	}
	k2, err := s.Append(ctx, path, map[string]string{"n": "two"})
	if err != nil {
		t.Fatal(err)
	}

	if k1 >= k2 {
		t.Errorf("keys not in insertion order: %q then %q", k1, k2)
	}

	snap, err := s.read(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Exists || len(snap.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", snap)
	}
	if snap.Entries[0].Key != k1 || snap.Entries[1].Key != k2 {
		t.Errorf("entries out of order: %q, %q", snap.Entries[0].Key, snap.Entries[1].Key)
	}

	var body map[string]string
	if err := json.Unmarshal(snap.Entries[0].Body, &body); err != nil {
		t.Fatal(err)
	}
	if body["n"] != "one" {
		t.Errorf("expected first body, got %v", body)
	}
}

func TestSubscribeDeliversInitialAndChanges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	path := LogPath("alice@example.com")

	if _, err := s.Append(ctx, path, map[string]string{"n": "one"}); err != nil {
		t.Fatal(err)
	}

	snaps := make(chan Snapshot, 4)
	h, err := s.Subscribe(ctx, path, func(snap Snapshot) { snaps <- snap })
	if err != nil {
		t.Fatal(err)
	}
	defer s.Unsubscribe(h)

	first := waitSnapshot(t, snaps)
	if !first.Exists || len(first.Entries) != 1 {
		t.Fatalf("expected initial snapshot with 1 entry, got %+v", first)
	}

	if _, err := s.Append(ctx, path, map[string]string{"n": "two"}); err != nil {
		t.Fatal(err)
	}

	second := waitSnapshot(t, snaps)
	if len(second.Entries) != 2 {
		t.Fatalf("expected snapshot with 2 entries after append, got %+v", second)
	}
}

func TestSubscribeAbsentCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snaps := make(chan Snapshot, 1)
	h, err := s.Subscribe(ctx, LogPath("nobody@example.com"), func(snap Snapshot) { snaps <- snap })
	if err != nil {
		t.Fatal(err)
	}
	defer s.Unsubscribe(h)

	snap := waitSnapshot(t, snaps)
	if snap.Exists || len(snap.Entries) != 0 {
		t.Errorf("expected empty non-existent snapshot, got %+v", snap)
	}
}

func TestUnsubscribeStopsDeliveries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	path := LogPath("alice@example.com")

	snaps := make(chan Snapshot, 4)
	h, err := s.Subscribe(ctx, path, func(snap Snapshot) { snaps <- snap })
	if err != nil {
		t.Fatal(err)
	}
	waitSnapshot(t, snaps) // initial

	s.Unsubscribe(h)
	s.Unsubscribe(h) // safe to repeat

	if _, err := s.Append(ctx, path, map[string]string{"n": "late"}); err != nil {
		t.Fatal(err)
	}

	select {
	case snap := <-snaps:
		t.Errorf("delivery after unsubscribe: %+v", snap)
	case <-time.After(100 * time.Millisecond):
	}
}

func waitSnapshot(t *testing.T, snaps <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap := <-snaps:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}
