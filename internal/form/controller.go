// Package form drives the item submission flow: edit a draft, optionally let
// the analyzer pre-fill it from a photo, validate, and hand it to the store.
// The controller is UI-agnostic; findctl wraps it in a terminal form, tests
// drive it directly.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"finder/internal/analyze"
	"finder/internal/imaging"
	"finder/internal/model"
)

// State of the submission flow.
type State int

const (
	StateEditing State = iota
	StateAnalyzing
	StateSubmitting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateAnalyzing:
		return "analyzing"
	case StateSubmitting:
		return "submitting"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrAnalysisInFlight is returned when an image is picked while a previous
// analysis is still running. One analysis per draft at a time.
var ErrAnalysisInFlight = errors.New("image analysis already in progress")

// ErrSubmitInFlight is returned when submit is triggered while a previous
// submission is still running.
var ErrSubmitInFlight = errors.New("submission already in progress")

// ValidationError reports the required fields a draft is missing. It is
// raised locally, before any network call.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "required fields missing: " + strings.Join(e.Missing, ", ")
}

// Advisory is a message for the user. Blocking advisories demand attention
// before continuing (a failed submit); non-blocking ones are informational
// (analysis failed, fill the fields by hand).
type Advisory struct {
	Message  string
	Blocking bool
}

// Store is the slice of the item store the controller needs.
type Store interface {
	Create(ctx context.Context, draft model.Draft) (*model.Item, error)
}

// Controller owns one draft and walks it through the submission flow.
// Safe for concurrent use; the draft value is immutable and replaced
// wholesale on every edit.
type Controller struct {
	store    Store
	analyzer analyze.Analyzer

	mu       sync.Mutex
	state    State
	draft    model.Draft
	advisory *Advisory
	created  *model.Item
}

// New creates a controller with a fresh draft: a found item, default
// category, dated today. analyzer may be nil (no AI configured); picking an
// image then just stores the photo without pre-filling.
func New(store Store, analyzer analyze.Analyzer) *Controller {
	return &Controller{
		store:    store,
		analyzer: analyzer,
		draft: model.Draft{
			Type:     model.TypeFound,
			Category: model.DefaultCategory,
			Date:     time.Now().Format("2006-01-02"),
			Tags:     []string{},
		},
	}
}

// State returns the current flow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns the current draft value.
func (c *Controller) Draft() model.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Advisory returns the pending advisory, if any, and clears it.
func (c *Controller) Advisory() *Advisory {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := c.advisory
	c.advisory = nil
	return a
}

// Created returns the stored item once the flow reached Done.
func (c *Controller) Created() *model.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created
}

// Destination names the listing the user should land on after a successful
// submit: the lost list for LOST items, the found list otherwise.
func (c *Controller) Destination() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft.Type == model.TypeLost {
		return "lost"
	}
	return "found"
}

// ApplyEdit replaces one field of the draft and returns the new draft value.
// Unknown fields are rejected. Edits are allowed in any state except while a
// submission is running.
func (c *Controller) ApplyEdit(field string, value any) (model.Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSubmitting {
		return c.draft, ErrSubmitInFlight
	}

	next := c.draft
	switch field {
	case "type":
		s, ok := value.(string)
		if !ok || !model.ValidType(s) {
			return c.draft, fmt.Errorf("type must be LOST or FOUND")
		}
		next.Type = s
	case "title":
		s, ok := value.(string)
		if !ok {
			return c.draft, fmt.Errorf("title must be a string")
		}
		next.Title = s
	case "category":
		s, ok := value.(string)
		if !ok {
			return c.draft, fmt.Errorf("category must be a string")
		}
		next.Category = s
	case "description":
		s, ok := value.(string)
		if !ok {
			return c.draft, fmt.Errorf("description must be a string")
		}
		next.Description = s
	case "location":
		s, ok := value.(string)
		if !ok {
			return c.draft, fmt.Errorf("location must be a string")
		}
		next.Location = s
	case "date":
		s, ok := value.(string)
		if !ok {
			return c.draft, fmt.Errorf("date must be a string")
		}
		next.Date = s
	case "contact":
		s, ok := value.(string)
		if !ok {
			return c.draft, fmt.Errorf("contact must be a string")
		}
		next.Contact = s
	case "tags":
		tags, ok := value.([]string)
		if !ok {
			return c.draft, fmt.Errorf("tags must be a string slice")
		}
		next.Tags = tags
	default:
		return c.draft, fmt.Errorf("unknown draft field %q", field)
	}

	c.draft = next
	return next, nil
}

// PickImage attaches a photo to the draft and runs analysis on it. The photo
// is stored in the draft immediately, before the analyzer is consulted, so
// the preview survives an analysis failure. Blocks until analysis finishes;
// run it from a goroutine and poll State for a busy indicator. A second pick
// while one is running fails with ErrAnalysisInFlight.
//
// Analysis failure is deliberately not an error: the fields stay as they
// were, a non-blocking advisory asks the user to fill them in by hand, and
// submission remains possible.
func (c *Controller) PickImage(ctx context.Context, data []byte, mime string) error {
	if mime == "" {
		mime = "image/jpeg"
	}

	c.mu.Lock()
	if c.state == StateAnalyzing {
		c.mu.Unlock()
		return ErrAnalysisInFlight
	}
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	next := c.draft
	next.ImageURL = imaging.EncodeDataURL(data, mime)
	c.draft = next
	if c.analyzer == nil {
		c.mu.Unlock()
		return nil
	}
	c.state = StateAnalyzing
	c.mu.Unlock()

	result, err := c.analyzer.Analyze(ctx, analyze.Request{
		ImageData: data,
		ImageMIME: mime,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateEditing

	if err != nil {
		c.advisory = &Advisory{Message: "AI 분석에 실패했어요. 정보를 직접 입력해주세요."}
		return nil
	}

	next = c.draft
	next.Title = result.Title
	next.Category = result.Category
	next.Description = result.Description
	next.Tags = result.Tags
	c.draft = next
	return nil
}

// Submit validates the draft and hands it to the store. Validation failures
// are reported without any network call and leave the flow in Editing. A
// store failure also returns to Editing with the draft intact, so the user
// can retry without re-entering anything. On success the flow is Done and
// the stored item is available from Created.
func (c *Controller) Submit(ctx context.Context) (*model.Item, error) {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if missing := c.draft.Validate(); len(missing) > 0 {
		c.mu.Unlock()
		return nil, &ValidationError{Missing: missing}
	}
	c.state = StateSubmitting
	draft := c.draft
	c.mu.Unlock()

	item, err := c.store.Create(ctx, draft)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateEditing
		c.advisory = &Advisory{
			Message:  "등록에 실패했어요. 잠시 후 다시 시도해주세요.",
			Blocking: true,
		}
		return nil, fmt.Errorf("submitting item: %w", err)
	}

	c.state = StateDone
	c.created = item
	return item, nil
}
