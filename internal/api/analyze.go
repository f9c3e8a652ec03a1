package api

import (
	"errors"
	"net/http"

	"finder/internal/analyze"
	"finder/internal/imaging"
)

// AnalyzeHandler is the enrichment gateway: it forwards an image and/or
// prompt to the analyzer and relays the structured result. The provider
// credential lives server-side only; clients never see it.
type AnalyzeHandler struct {
	// Analyzer is nil when no credential is configured. That is a server
	// misconfiguration, reported per request without any outbound call.
	Analyzer analyze.Analyzer
}

type analyzeRequest struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

// Analyze handles POST /api/analyze.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.Analyzer == nil {
		jsonError(w, http.StatusInternalServerError, analyze.KindAPIKeyMissing,
			"no AI credential is configured on the server")
		return
	}

	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	areq := analyze.Request{Prompt: req.Prompt}
	if req.Image != "" {
		data, mime, err := imaging.ParseDataURL(req.Image)
		if err != nil {
			// VALIDATION_ERROR is outside the analyzer's classified kinds:
			// a payload that cannot be decoded is rejected here, before any
			// provider call, like every other malformed request body.
			jsonError(w, http.StatusBadRequest, "VALIDATION_ERROR", "image is not valid base64")
			return
		}
		areq.ImageData = data
		areq.ImageMIME = mime
	}

	result, err := h.Analyzer.Analyze(r.Context(), areq)
	if err != nil {
		var aerr *analyze.Error
		if errors.As(err, &aerr) {
			jsonError(w, aerr.HTTPStatus, aerr.Kind, aerr.Message)
			return
		}
		// The analyzer contract says this can't happen; keep the boundary
		// closed anyway.
		jsonError(w, http.StatusInternalServerError, analyze.KindServerError, err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, result)
}
