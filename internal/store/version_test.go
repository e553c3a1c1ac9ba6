package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"storepress/internal/models"
)

func sectionContent(body string) json.RawMessage {
	return json.RawMessage(`[{"type":"text","props":{"body":"` + body + `"}}]`)
}

func TestVersionStoreSnapshotAndList(t *testing.T) {
	db := testDB(t)
	templates := NewTemplateStore(db)
	versions := NewVersionStore(db)

	themeID := createTestTheme(t, db, "Ver Theme "+uuid.NewString()[:8])
	tmpl, err := templates.FindOrCreate(themeID, models.PageTypeHome, "", nil)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}

	actor := uuid.New()
	seo := models.SEO{Title: "Home"}

	v, err := versions.Snapshot(tmpl.ID, sectionContent("first"), seo, models.LabelAutoSave, actor)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if v == nil {
		t.Fatal("expected a version, got nil")
	}
	if v.Label != models.LabelAutoSave {
		t.Errorf("label: got %q", v.Label)
	}
	if v.SEOTitle != "Home" {
		t.Errorf("seo_title: got %q", v.SEOTitle)
	}

	if _, err := versions.Snapshot(tmpl.ID, sectionContent("second"), seo, models.LabelPrePublish, actor); err != nil {
		t.Fatalf("Snapshot 2: %v", err)
	}

	list, err := versions.ListByTemplateID(tmpl.ID)
	if err != nil {
		t.Fatalf("ListByTemplateID: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("versions: got %d, want 2", len(list))
	}
	// Oldest first.
	if !models.ContentEqual(list[0].Content, sectionContent("first")) {
		t.Error("index 0 should hold the oldest snapshot")
	}
	if list[0].Seq >= list[1].Seq {
		t.Error("sequence numbers should increase with insertion order")
	}
}

func TestVersionStoreSnapshotEmptyIsNoop(t *testing.T) {
	db := testDB(t)
	templates := NewTemplateStore(db)
	versions := NewVersionStore(db)

	themeID := createTestTheme(t, db, "Noop Theme "+uuid.NewString()[:8])
	tmpl, _ := templates.FindOrCreate(themeID, models.PageTypeAbout, "", nil)

	for _, raw := range []json.RawMessage{nil, json.RawMessage(`null`), json.RawMessage(`[]`)} {
		v, err := versions.Snapshot(tmpl.ID, raw, models.SEO{}, models.LabelAutoSave, uuid.New())
		if err != nil {
			t.Fatalf("Snapshot(%q): %v", raw, err)
		}
		if v != nil {
			t.Errorf("Snapshot(%q): expected no-op, got a version", raw)
		}
	}

	count, _ := versions.Count(tmpl.ID)
	if count != 0 {
		t.Errorf("count: got %d, want 0", count)
	}
}

func TestVersionStoreCapacityEvictsOldest(t *testing.T) {
	db := testDB(t)
	templates := NewTemplateStore(db)
	versions := NewVersionStore(db)

	themeID := createTestTheme(t, db, "Cap Theme "+uuid.NewString()[:8])
	tmpl, _ := templates.FindOrCreate(themeID, models.PageTypeCatalog, "", nil)

	actor := uuid.New()
	total := models.VersionCapacity + 5
	for i := 0; i < total; i++ {
		if _, err := versions.Snapshot(tmpl.ID, sectionContent(fmt.Sprintf("v%02d", i)), models.SEO{}, models.LabelAutoSave, actor); err != nil {
			t.Fatalf("Snapshot %d: %v", i, err)
		}
	}

	count, err := versions.Count(tmpl.ID)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != models.VersionCapacity {
		t.Fatalf("count: got %d, want %d", count, models.VersionCapacity)
	}

	// The oldest five were evicted: index 0 is now v05.
	list, _ := versions.ListByTemplateID(tmpl.ID)
	if !models.ContentEqual(list[0].Content, sectionContent("v05")) {
		t.Error("oldest surviving version should be v05")
	}
	if !models.ContentEqual(list[len(list)-1].Content, sectionContent(fmt.Sprintf("v%02d", total-1))) {
		t.Error("newest version should be the last snapshot")
	}
}

func TestVersionStoreFindByIndex(t *testing.T) {
	db := testDB(t)
	templates := NewTemplateStore(db)
	versions := NewVersionStore(db)

	themeID := createTestTheme(t, db, "Idx Theme "+uuid.NewString()[:8])
	tmpl, _ := templates.FindOrCreate(themeID, models.PageTypeContact, "", nil)

	actor := uuid.New()
	for i := 0; i < 3; i++ {
		versions.Snapshot(tmpl.ID, sectionContent(fmt.Sprintf("v%d", i)), models.SEO{}, models.LabelAutoSave, actor)
	}

	v, err := versions.FindByIndex(tmpl.ID, 1)
	if err != nil {
		t.Fatalf("FindByIndex: %v", err)
	}
	if !models.ContentEqual(v.Content, sectionContent("v1")) {
		t.Error("index 1 should be the second-oldest snapshot")
	}

	for _, idx := range []int{-1, 3, 99} {
		_, err := versions.FindByIndex(tmpl.ID, idx)
		if !errors.Is(err, models.ErrVersionNotFound) {
			t.Errorf("FindByIndex(%d): expected ErrVersionNotFound, got %v", idx, err)
		}
	}
}
