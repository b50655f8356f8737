package state

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/bookshelf/internal/record"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	books := record.Collection{{"ID": int64(1), "Title": "A"}, {"ID": int64(2), "Title": "B"}}

	before := time.Now()
	s.Update(books, books, nil)

	snap := s.Snapshot()
	if len(snap.Collection) != 2 || snap.Collection[0]["Title"] != "A" {
		t.Fatalf("snapshot collection = %#v, want 2 records", snap.Collection)
	}
	if len(snap.Visible) != 2 {
		t.Fatalf("snapshot visible = %#v, want 2 records", snap.Visible)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Collection[0]["Title"] = "changed"
	snap2 := s.Snapshot()
	if snap2.Collection[0]["Title"] != "A" {
		t.Fatalf("Snapshot should clone collection; got %v want A", snap2.Collection[0]["Title"])
	}
	books[0]["Title"] = "mutated"
	if s.Snapshot().Collection[0]["Title"] != "A" {
		t.Fatalf("Update should clone its input")
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update(record.Collection{{"ID": int64(1)}}, record.Collection{{"ID": int64(1)}}, nil)
	prev := s.Snapshot()

	origErr := errors.New("boom")
	s.Update(nil, nil, origErr)

	snap := s.Snapshot()
	if !reflect.DeepEqual(snap.Collection, prev.Collection) {
		t.Fatalf("collection changed on error: got %#v want %#v", snap.Collection, prev.Collection)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_EmptyCollectionIsNotNil(t *testing.T) {
	var s Store
	s.Update(record.Collection{}, record.Collection{}, nil)
	snap := s.Snapshot()
	if snap.Collection == nil || len(snap.Collection) != 0 {
		t.Fatalf("Collection = %#v, want empty non-nil", snap.Collection)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	if s.Snapshot().IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	s.Update(nil, nil, errors.New("fail 1"))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(nil, nil, errors.New("fail 2"))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(record.Collection{}, record.Collection{}, nil)
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}

func TestStore_LookupsAndTarget(t *testing.T) {
	var s Store

	s.SetLookup("Categories", record.Collection{})
	snap := s.Snapshot()
	if got, ok := snap.Lookups["Categories"]; !ok || got == nil || len(got) != 0 {
		t.Fatalf("Lookups[Categories] = %#v, want empty", got)
	}
	if !snap.LookupsSettled([]string{"Categories"}) {
		t.Fatal("LookupsSettled(Categories) = false, want true")
	}
	if snap.LookupsSettled([]string{"Categories", "Formats"}) {
		t.Fatal("LookupsSettled(Categories, Formats) = true, want false")
	}

	s.SetEditTarget("NEW", true)
	if snap := s.Snapshot(); snap.EditTarget != "NEW" || !snap.HasTarget {
		t.Fatalf("EditTarget = %q/%v, want NEW/true", snap.EditTarget, snap.HasTarget)
	}
	s.SetEditTarget("", false)
	if snap := s.Snapshot(); snap.HasTarget {
		t.Fatalf("HasTarget = true, want false")
	}
}

func TestStore_WaitWakesOnUpdate(t *testing.T) {
	var s Store
	s.SetLoading(true)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(10 * time.Millisecond)
		s.SetLoading(false)
	}()

	snap, err := s.Wait(ctx, func(snap Snapshot) bool { return !snap.Loading })
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if snap.Loading {
		t.Fatal("Loading = true, want false")
	}
}

func TestStore_WaitHonoursContext(t *testing.T) {
	var s Store
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Wait(ctx, func(Snapshot) bool { return false })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait error = %v, want deadline exceeded", err)
	}
}
