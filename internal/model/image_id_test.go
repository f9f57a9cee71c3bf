package model

import (
	"encoding/json"
	"testing"
)

func TestImageIDAcceptsNumbersAndStrings(t *testing.T) {
	var imgs []Image
	payload := `[{"id": 42, "name": "a.png"}, {"id": "img-7", "name": "b.png"}, {"id": null, "name": "c.png"}]`
	if err := json.Unmarshal([]byte(payload), &imgs); err != nil {
		t.Fatalf("unmarshal images: %v", err)
	}
	if imgs[0].ID != "42" || imgs[1].ID != "img-7" || imgs[2].ID != "" {
		t.Fatalf("unexpected ids: %q %q %q", imgs[0].ID, imgs[1].ID, imgs[2].ID)
	}
}

func TestImageIDRejectsObjects(t *testing.T) {
	var img Image
	if err := json.Unmarshal([]byte(`{"id": {"x": 1}}`), &img); err == nil {
		t.Fatal("expected object id to be rejected")
	}
}
