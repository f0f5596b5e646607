package mysql

import (
	"context"
	"testing"

	"Synergy_Link/internal/model"
)

func TestOutboxInsertDeduplicates(t *testing.T) {
	repo := &OutboxRepository{DB: newTestDB(t)}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Insert(ctx, &model.PushOutbox{
			DedupKey:    "match:u1:u2:u2",
			EventType:   "match",
			RecipientID: "u2",
			Token:       "t2",
			Payload:     `{}`,
		}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	list, err := repo.List(ctx, 10, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("rows = %d, want 1", len(list))
	}
}

func TestOutboxRetryAndSuccess(t *testing.T) {
	repo := &OutboxRepository{DB: newTestDB(t)}
	ctx := context.Background()
	for _, key := range []string{"message:m1", "message:m2"} {
		if err := repo.Insert(ctx, &model.PushOutbox{DedupKey: key, EventType: "message", RecipientID: "u1", Token: "t1", Payload: `{}`}); err != nil {
			t.Fatal(err)
		}
	}
	list, _ := repo.List(ctx, 10, 2)
	if len(list) != 2 {
		t.Fatalf("pending = %d", len(list))
	}

	if err := repo.SuccessUpdate(ctx, list[0].ID); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := repo.RetryUpdate(ctx, list[1].ID); err != nil {
			t.Fatal(err)
		}
	}

	// sent rows and rows at max retry are both done
	left, err := repo.List(ctx, 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Fatalf("left = %+v", left)
	}
	left, _ = repo.List(ctx, 10, 3)
	if len(left) != 1 || left[0].Retry != 2 || left[0].Status != model.OutboxFailed {
		t.Fatalf("retryable = %+v", left)
	}
}
