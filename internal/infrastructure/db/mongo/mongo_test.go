package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOwnedFilter(t *testing.T) {
	id := primitive.NewObjectID()
	creator := primitive.NewObjectID()

	filter, ok := ownedFilter(id.Hex(), creator.Hex())
	if !ok {
		t.Fatal("expected valid filter")
	}
	if filter["_id"] != id || filter["creator_id"] != creator {
		t.Errorf("unexpected filter %v", filter)
	}

	if _, ok := ownedFilter("not-hex", creator.Hex()); ok {
		t.Error("malformed course id should not build a filter")
	}
	if _, ok := ownedFilter(id.Hex(), ""); ok {
		t.Error("empty creator id should not build a filter")
	}
}

func TestObjectIDs_SkipsMalformed(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	got := objectIDs([]string{a.Hex(), "zzz", b.Hex(), ""})
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("unexpected ids %v", got)
	}
}

func TestMongoCourse_ToDomain(t *testing.T) {
	now := time.Now().UTC()
	doc := mongoCourse{
		ID:        primitive.NewObjectID(),
		Title:     "Go",
		Price:     12.5,
		Image:     mongoImage{PublicID: "a.png", URL: "/media/a.png"},
		CreatorID: primitive.NewObjectID(),
		CreatedAt: now,
	}
	c := doc.toDomain()
	if c.ID != doc.ID.Hex() || c.CreatorID != doc.CreatorID.Hex() {
		t.Errorf("ids not converted: %+v", c)
	}
	if c.Image.PublicID != "a.png" || c.Price != 12.5 {
		t.Errorf("fields not copied: %+v", c)
	}
}
