// Package analyze turns a photo or free-text description of an object into
// structured listing fields. The concrete provider sits behind the Analyzer
// interface so the rest of the system can be tested with a fake, and so a
// provider failure is always one of a small set of classified errors rather
// than a raw SDK error.
package analyze

import (
	"context"
	"net/http"
	"strings"

	"finder/internal/model"
)

// Error kinds, in the shape the HTTP gateway reports them.
const (
	KindAPIKeyMissing    = "API_KEY_MISSING"
	KindQuotaExceeded    = "QUOTA_EXCEEDED"
	KindPermissionDenied = "PERMISSION_DENIED"
	KindServerError      = "SERVER_ERROR"
)

// Error is a classified analysis failure. Every error crossing the package
// boundary is one of these.
type Error struct {
	Kind       string
	HTTPStatus int
	Message    string
}

func (e *Error) Error() string {
	return e.Kind + ": " + e.Message
}

// Request is the input to an analysis call. Image and Prompt are both
// optional, but an implementation never sends an empty payload: a missing
// prompt is replaced by a generic describe-this-object instruction.
type Request struct {
	ImageData []byte
	ImageMIME string
	Prompt    string
}

// Analyzer is the capability of describing an object from an image or text.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*model.AnalysisResult, error)
}

// Classify maps a provider failure to a classified Error. Quota and
// permission problems are recognized by status code or by message content,
// the way the upstream provider actually reports them; everything else is a
// server error carrying the provider's status when one is known.
func Classify(status int, message string) *Error {
	lower := strings.ToLower(message)
	switch {
	case status == http.StatusTooManyRequests || strings.Contains(lower, "quota"):
		return &Error{Kind: KindQuotaExceeded, HTTPStatus: http.StatusTooManyRequests, Message: message}
	case status == http.StatusForbidden || strings.Contains(lower, "permission"):
		return &Error{Kind: KindPermissionDenied, HTTPStatus: http.StatusForbidden, Message: message}
	default:
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return &Error{Kind: KindServerError, HTTPStatus: status, Message: message}
	}
}
