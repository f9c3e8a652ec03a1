package api

import (
	"database/sql"
	"net/http"

	"finder/internal/analyze"
)

// NewRouter creates the API router with all endpoints registered.
// analyzer may be nil when no AI credential is configured; the analyze
// endpoint then reports the misconfiguration instead of calling out.
func NewRouter(db *sql.DB, analyzer analyze.Analyzer) http.Handler {
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{DB: db}
	analyzeHandler := &AnalyzeHandler{Analyzer: analyzer}

	// The item collection. Method patterns give every other verb a 405.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("POST /api/items", itemsHandler.Create)
	mux.HandleFunc("PATCH /api/items", itemsHandler.UpdateStatus)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /api/items/{id}/image", itemsHandler.GetImage)

	// The enrichment gateway.
	mux.HandleFunc("POST /api/analyze", analyzeHandler.Analyze)

	return mux
}
