package queue_test

import (
	"context"
	"errors"
	"testing"

	"xscribe/internal/queue"
	"xscribe/internal/testsupport"
)

func openStore(t *testing.T) *queue.Store {
	t.Helper()
	store, err := queue.Open(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAddAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	file, err := store.Add(ctx, "/media/talk.mp4")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if file.ID == 0 || file.Status != queue.StatusPending {
		t.Fatalf("unexpected entry %+v", file)
	}

	loaded, err := store.Get(ctx, file.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if loaded.Path != "/media/talk.mp4" {
		t.Fatalf("path %q", loaded.Path)
	}
	if loaded.CreatedAt.IsZero() || loaded.UpdatedAt.IsZero() {
		t.Fatal("timestamps not stored")
	}

	if _, err := store.Get(ctx, 9999); !errors.Is(err, queue.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestNextPendingOrder(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, _ := store.Add(ctx, "/a.wav")
	if _, err := store.Add(ctx, "/b.wav"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	next, err := store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest entry first, got %+v", next)
	}
}

func TestStatusTransitions(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	file, _ := store.Add(ctx, "/a.wav")
	if err := store.MarkProcessing(ctx, file.ID); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if err := store.UpdateProgress(ctx, file.ID, "recognize", 80); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	loaded, _ := store.Get(ctx, file.ID)
	if loaded.Status != queue.StatusProcessing || loaded.Stage != "recognize" || loaded.Progress != 80 {
		t.Fatalf("entry %+v", loaded)
	}

	if err := store.MarkCompleted(ctx, file.ID, "/out/a.json"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	loaded, _ = store.Get(ctx, file.ID)
	if loaded.Status != queue.StatusCompleted || loaded.ResultPath != "/out/a.json" || !loaded.Terminal() {
		t.Fatalf("entry %+v", loaded)
	}

	failed, _ := store.Add(ctx, "/b.wav")
	if err := store.MarkFailed(ctx, failed.ID, "file not found"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	loaded, _ = store.Get(ctx, failed.ID)
	if loaded.Status != queue.StatusFailed || loaded.ErrorMessage != "file not found" {
		t.Fatalf("entry %+v", loaded)
	}

	if err := store.MarkProcessing(ctx, 9999); !errors.Is(err, queue.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestResetStuck(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	file, _ := store.Add(ctx, "/a.wav")
	_ = store.MarkProcessing(ctx, file.ID)

	reset, err := store.ResetStuck(ctx)
	if err != nil {
		t.Fatalf("ResetStuck: %v", err)
	}
	if reset != 1 {
		t.Fatalf("reset %d entries, want 1", reset)
	}
	loaded, _ := store.Get(ctx, file.ID)
	if loaded.Status != queue.StatusPending || loaded.Progress != 0 {
		t.Fatalf("entry %+v", loaded)
	}
}

func TestListFilterAndClear(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	a, _ := store.Add(ctx, "/a.wav")
	if _, err := store.Add(ctx, "/b.wav"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	_ = store.MarkCompleted(ctx, a.ID, "/out/a.json")

	completed, err := store.List(ctx, queue.StatusCompleted)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != a.ID {
		t.Fatalf("completed %+v", completed)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all %d", len(all))
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[queue.StatusCompleted] != 1 || stats[queue.StatusPending] != 1 {
		t.Fatalf("stats %+v", stats)
	}

	removed, err := store.Clear(ctx, queue.StatusCompleted)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d", removed)
	}
	remaining, _ := store.List(ctx)
	if len(remaining) != 1 {
		t.Fatalf("remaining %d", len(remaining))
	}
}
