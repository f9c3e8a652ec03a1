package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"finder/internal/analyze"
	"finder/internal/imaging"
	"finder/internal/model"
)

// Analyze forwards an image and/or prompt to the server's enrichment
// gateway. *Store satisfies analyze.Analyzer, so the form controller can use
// a server connection directly as its analyzer. Gateway error responses come
// back as classified *analyze.Error values.
func (s *Store) Analyze(ctx context.Context, req analyze.Request) (*model.AnalysisResult, error) {
	if !s.Connected() {
		return nil, ErrDisconnected
	}

	payload := map[string]string{"prompt": req.Prompt}
	if len(req.ImageData) > 0 {
		mime := req.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		payload["image"] = imaging.EncodeDataURL(req.ImageData, mime)
	}
	body, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var gwErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&gwErr)
		if gwErr.Error == "" {
			gwErr.Error = analyze.KindServerError
			gwErr.Message = resp.Status
		}
		return nil, &analyze.Error{Kind: gwErr.Error, HTTPStatus: resp.StatusCode, Message: gwErr.Message}
	}

	var result model.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding analysis result: %w", err)
	}
	return &result, nil
}
