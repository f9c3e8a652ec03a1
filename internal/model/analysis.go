package model

// AnalysisResult is what the image analyzer extracts from a photo or text
// description. Transient: it only ever pre-fills a draft, it is never stored.
type AnalysisResult struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}
