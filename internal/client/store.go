// Package client is the consumer side of the item store: an HTTP client for
// the finder server plus a polling subscription that approximates a live
// feed. Cross-client convergence is bounded by the poll interval; a client's
// own writes are visible immediately because every mutation returns the
// stored record.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finder/internal/model"
)

// ErrDisconnected is returned by every operation on a store that was
// constructed without a server address.
var ErrDisconnected = errors.New("store not configured")

// ErrConnection marks failures worth retrying: the server was unreachable or
// failed internally. Validation rejections are not wrapped in it.
var ErrConnection = errors.New("store connection error")

// DefaultPollInterval is how often Subscribe re-fetches the collection.
const DefaultPollInterval = 5 * time.Second

// Store is a client for the item store. Construct with New; the zero value
// is disconnected.
type Store struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
}

// New creates a store client for the given server base URL, e.g.
// "http://localhost:8080". An empty URL yields a disconnected store whose
// operations fail with ErrDisconnected and whose Subscribe degrades to a
// no-op; callers keep working, they just see nothing.
func New(baseURL string) *Store {
	return &Store{
		baseURL:      baseURL,
		http:         &http.Client{Timeout: 30 * time.Second},
		pollInterval: DefaultPollInterval,
	}
}

// Connected reports whether the store has a server address configured.
func (s *Store) Connected() bool {
	return s.baseURL != ""
}

// List fetches the full collection, newest first.
func (s *Store) List(ctx context.Context) ([]model.Item, error) {
	if !s.Connected() {
		return nil, ErrDisconnected
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/items", nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	var items []model.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}
	return items, nil
}

// Create submits a draft and returns the stored item with its assigned id,
// createdAt, and ACTIVE status.
func (s *Store) Create(ctx context.Context, draft model.Draft) (*model.Item, error) {
	if !s.Connected() {
		return nil, ErrDisconnected
	}

	body, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("encoding draft: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/items", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, responseError(resp)
	}

	var item model.Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decoding created item: %w", err)
	}
	return &item, nil
}

// UpdateStatus sets an item's status on the server.
func (s *Store) UpdateStatus(ctx context.Context, id, status string) error {
	if !s.Connected() {
		return ErrDisconnected
	}

	body, _ := json.Marshal(map[string]string{"id": id, "status": status})
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, s.baseURL+"/api/items", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}
	return nil
}

// Subscribe delivers the full collection to onChange immediately, then again
// whenever a poll observes a different collection. The returned cancel stops
// delivery and releases the poller; call it when the consuming view goes
// away. On a disconnected store it logs a warning and returns a no-op.
// onChange is invoked from a single goroutine, never concurrently.
func (s *Store) Subscribe(onChange func([]model.Item)) (cancel func()) {
	if !s.Connected() {
		slog.Warn("item store not configured, subscription is a no-op")
		return func() {}
	}

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		var last []byte
		deliver := func() {
			items, err := s.List(ctx)
			if err != nil {
				if ctx.Err() == nil {
					slog.Warn("item poll failed", "error", err)
				}
				return
			}
			if items == nil {
				items = []model.Item{}
			}
			encoded, err := json.Marshal(items)
			if err != nil {
				return
			}
			if bytes.Equal(encoded, last) {
				return
			}
			last = encoded
			onChange(items)
		}

		deliver()
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deliver()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			<-done
		})
	}
}

// responseError turns a non-success response into an error, preserving the
// server's classified code and message. Server-side failures are retryable
// connection errors; rejections of the request itself are not.
func responseError(resp *http.Response) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	json.Unmarshal(raw, &body)

	if body.Error == "" {
		body.Error = "SERVER_ERROR"
		body.Message = resp.Status
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %s: %s", ErrConnection, body.Error, body.Message)
	}
	return fmt.Errorf("%s: %s", body.Error, body.Message)
}
