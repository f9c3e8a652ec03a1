package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"finder/internal/db"
	"finder/internal/model"
)

func testDraft(typ, title string) model.Draft {
	return model.Draft{
		Type:     typ,
		Title:    title,
		Category: model.DefaultCategory,
		Location: "2층 도서관",
		Contact:  "학생회실",
		Tags:     []string{"test"},
	}
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	before := time.Now().UnixMilli()
	item, err := CreateItem(ctx, database, testDraft(model.TypeFound, "파란색 필통"), nil, "")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if item.ID == "" {
		t.Error("expected non-empty id")
	}
	if item.Status != model.StatusActive {
		t.Errorf("expected status ACTIVE, got %q", item.Status)
	}
	if item.CreatedAt < before {
		t.Errorf("createdAt %d predates the call at %d", item.CreatedAt, before)
	}
	if item.Title != "파란색 필통" {
		t.Errorf("expected title to round-trip, got %q", item.Title)
	}

	got, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil || got.ID != item.ID {
		t.Fatalf("expected to read back item %s, got %+v", item.ID, got)
	}
}

func TestCreateIgnoresCallerStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// A draft has no status field at all; the store forces ACTIVE.
	item, err := CreateItem(ctx, database, testDraft(model.TypeLost, "에어팟"), nil, "")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Status != model.StatusActive {
		t.Errorf("expected forced ACTIVE, got %q", item.Status)
	}
}

func TestListItemsSortedNewestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := CreateItem(ctx, database, testDraft(model.TypeFound, "item"), nil, ""); err != nil {
			t.Fatalf("CreateItem: %v", err)
		}
	}

	items, err := ListItems(ctx, database, "", "")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1], items[i]
		if cur.CreatedAt > prev.CreatedAt {
			t.Errorf("items not sorted by createdAt desc at %d", i)
		}
		if cur.CreatedAt == prev.CreatedAt && cur.ID > prev.ID {
			t.Errorf("tie at %d not broken by id desc", i)
		}
	}
}

func TestListItemsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	lost, _ := CreateItem(ctx, database, testDraft(model.TypeLost, "지갑"), nil, "")
	CreateItem(ctx, database, testDraft(model.TypeFound, "우산"), nil, "")
	UpdateItemStatus(ctx, database, lost.ID, model.StatusResolved)

	byType, err := ListItems(ctx, database, model.TypeLost, "")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(byType) != 1 || byType[0].ID != lost.ID {
		t.Errorf("expected only the lost item, got %d items", len(byType))
	}

	active, _ := ListItems(ctx, database, "", model.StatusActive)
	if len(active) != 1 || active[0].Type != model.TypeFound {
		t.Errorf("expected only the active found item, got %d items", len(active))
	}
}

func TestUpdateItemStatusMonotone(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, testDraft(model.TypeFound, "모자"), nil, "")

	if err := UpdateItemStatus(ctx, database, item.ID, model.StatusResolved); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	// Resolving again is idempotent.
	if err := UpdateItemStatus(ctx, database, item.ID, model.StatusResolved); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.StatusResolved {
		t.Errorf("expected RESOLVED, got %q", got.Status)
	}

	// No way back.
	if err := UpdateItemStatus(ctx, database, item.ID, model.StatusActive); err != ErrResolved {
		t.Errorf("expected ErrResolved reopening item, got %v", err)
	}
}

func TestUpdateItemStatusConcurrentReopen(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	// A reopen racing a resolve must never land after it: whatever the
	// interleaving, the item ends up RESOLVED. A reopen that loses the race
	// either fails with ErrResolved or wrote ACTIVE before the resolve did.
	for i := 0; i < 200; i++ {
		item, err := CreateItem(ctx, database, testDraft(model.TypeFound, "경주 물건"), nil, "")
		if err != nil {
			t.Fatalf("CreateItem: %v", err)
		}

		start := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			if err := UpdateItemStatus(ctx, database, item.ID, model.StatusResolved); err != nil {
				t.Errorf("resolve: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			<-start
			if err := UpdateItemStatus(ctx, database, item.ID, model.StatusActive); err != nil && err != ErrResolved {
				t.Errorf("reopen: %v", err)
			}
		}()
		close(start)
		wg.Wait()

		got, err := GetItem(ctx, database, item.ID)
		if err != nil {
			t.Fatalf("GetItem: %v", err)
		}
		if got.Status != model.StatusResolved {
			t.Fatalf("iteration %d: reopen landed after resolve, status %q", i, got.Status)
		}
	}
}

func TestUpdateItemStatusNotFound(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := UpdateItemStatus(ctx, database, "missing", model.StatusResolved); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	draft := testDraft(model.TypeFound, "사진 있는 물건")
	draft.ImageURL = "data:image/jpeg;base64,ignored-inline-payload"
	item, err := CreateItem(ctx, database, draft, []byte("fake image data"), "image/jpeg")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	// The inline payload is replaced by the image endpoint.
	want := "/api/items/" + item.ID + "/image"
	if item.ImageURL != want {
		t.Errorf("expected imageUrl %q, got %q", want, item.ImageURL)
	}

	data, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("expected image data, got %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected mime 'image/jpeg', got %q", mime)
	}

	// An item without a photo has none.
	plain, _ := CreateItem(ctx, database, testDraft(model.TypeFound, "사진 없는 물건"), nil, "")
	data, _, err = GetItemImage(ctx, database, plain.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if data != nil {
		t.Errorf("expected no image data, got %d bytes", len(data))
	}
}

func TestTagsRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	draft := testDraft(model.TypeFound, "필통")
	draft.Tags = []string{"pencil case", "blue", "school"}
	item, err := CreateItem(ctx, database, draft, nil, "")
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if len(item.Tags) != 3 || item.Tags[0] != "pencil case" {
		t.Errorf("expected tags to round-trip in order, got %v", item.Tags)
	}

	// nil tags come back as an empty list, never null.
	draft.Tags = nil
	item, _ = CreateItem(ctx, database, draft, nil, "")
	if item.Tags == nil {
		t.Error("expected empty tags slice, got nil")
	}
}
