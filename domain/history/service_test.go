package history

import (
	"context"
	"testing"
	"time"

	"stylelens-go/core/state"
)

// fakeRepo is an append-only in-memory repository for tests.
type fakeRepo struct {
	records []*Record
}

func (f *fakeRepo) Insert(ctx context.Context, r *Record) error {
	f.records = append(f.records, r)
	return nil
}

func (f *fakeRepo) FindRecent(ctx context.Context, limit int) ([]*Record, error) {
	out := make([]*Record, 0, limit)
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.records[i])
	}
	return out, nil
}

func (f *fakeRepo) Count(ctx context.Context) (int, error) {
	return len(f.records), nil
}

func (f *fakeRepo) Clear(ctx context.Context) error {
	f.records = nil
	return nil
}

func TestService_Append(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	rec := &Record{ID: "req-1", Mode: state.ModeCaption, ImagePath: "/tmp/dog.png", Caption: "a dog running"}
	if err := svc.Append(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	if len(repo.records) != 1 {
		t.Fatalf("stored %d records, want 1", len(repo.records))
	}
	if repo.records[0].CreatedAt.IsZero() {
		t.Error("CreatedAt was not stamped")
	}
}

func TestService_Append_RejectsEmpty(t *testing.T) {
	svc := NewService(&fakeRepo{})

	if err := svc.Append(context.Background(), nil); err != ErrEmptyRecord {
		t.Errorf("nil record: err = %v, want ErrEmptyRecord", err)
	}
	if err := svc.Append(context.Background(), &Record{}); err != ErrEmptyRecord {
		t.Errorf("record without ID: err = %v, want ErrEmptyRecord", err)
	}
}

func TestService_Recent_NewestFirst(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	for _, id := range []string{"a", "b", "c"} {
		if err := svc.Append(context.Background(), &Record{ID: id, Mode: state.ModeSegmentation}); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := svc.Recent(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d records", len(recent))
	}
	if recent[0].ID != "c" || recent[2].ID != "a" {
		t.Errorf("order = [%s %s %s], want newest first", recent[0].ID, recent[1].ID, recent[2].ID)
	}
}

func TestRecord_Summary(t *testing.T) {
	capRec := &Record{
		ID:        "r1",
		Mode:      state.ModeCaption,
		ImagePath: "/home/user/photos/dog.png",
		Caption:   "a dog running",
	}
	if got := capRec.Summary(); got != `dog.png: "a dog running"` {
		t.Errorf("Summary = %q", got)
	}

	segRec := &Record{
		ID:        "r2",
		Mode:      state.ModeSegmentation,
		ImagePath: "/home/user/photos/outfit.jpg",
		Elapsed:   1500 * time.Millisecond,
	}
	if got := segRec.Summary(); got != "outfit.jpg: Clothes Segmentation (1.5s)" {
		t.Errorf("Summary = %q", got)
	}
}

func TestRecord_Clone(t *testing.T) {
	rec := &Record{ID: "r1", Caption: "original"}
	clone := rec.Clone()
	clone.Caption = "changed"

	if rec.Caption != "original" {
		t.Error("Clone should not share state with the original")
	}
}
