package model

import (
	"slices"
	"testing"
)

func TestDraftValidate(t *testing.T) {
	full := Draft{
		Type:     TypeFound,
		Title:    "파란색 필통",
		Location: "2층 도서관",
		Contact:  "학생회실",
	}
	if missing := full.Validate(); len(missing) != 0 {
		t.Errorf("expected complete draft to validate, missing %v", missing)
	}

	empty := Draft{Type: TypeLost}
	missing := empty.Validate()
	for _, field := range []string{"title", "location", "contact"} {
		if !slices.Contains(missing, field) {
			t.Errorf("expected %q to be reported missing, got %v", field, missing)
		}
	}

	// Whitespace-only counts as missing.
	blank := full
	blank.Contact = "   "
	if missing := blank.Validate(); !slices.Contains(missing, "contact") {
		t.Errorf("expected whitespace contact to be missing, got %v", missing)
	}
}

func TestValidTypeAndStatus(t *testing.T) {
	if !ValidType(TypeLost) || !ValidType(TypeFound) {
		t.Error("known types should be valid")
	}
	if ValidType("STOLEN") {
		t.Error("unknown type should be invalid")
	}
	if !ValidStatus(StatusActive) || !ValidStatus(StatusResolved) {
		t.Error("known statuses should be valid")
	}
	if ValidStatus("PENDING") {
		t.Error("unknown status should be invalid")
	}
}
