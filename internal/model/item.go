package model

import "strings"

// Item is a single lost-or-found listing.
type Item struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Date        string   `json:"date"`
	Contact     string   `json:"contact"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Status      string   `json:"status"`
	CreatedAt   int64    `json:"createdAt"`
}

// Item types.
const (
	TypeLost  = "LOST"
	TypeFound = "FOUND"
)

// Item statuses. RESOLVED is terminal; there is no way back to ACTIVE.
const (
	StatusActive   = "ACTIVE"
	StatusResolved = "RESOLVED"
)

// Categories the UI offers. A convention only; the store accepts any string.
var Categories = []string{
	"전자기기",
	"의류",
	"학용품",
	"지갑/카드",
	"악세사리",
	"기타",
}

// DefaultCategory is the category a fresh draft starts with.
const DefaultCategory = "기타"

// ValidType reports whether t is a known item type.
func ValidType(t string) bool {
	return t == TypeLost || t == TypeFound
}

// ValidStatus reports whether s is a known item status.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusResolved
}

// Draft is an item as submitted by a reporter, before the store assigns
// id, status, and createdAt.
type Draft struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Date        string   `json:"date"`
	Contact     string   `json:"contact"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// Validate returns the names of required fields that are missing.
// An empty result means the draft is submittable.
func (d Draft) Validate() []string {
	var missing []string
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(d.Location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(d.Contact) == "" {
		missing = append(missing, "contact")
	}
	return missing
}
