package api

// Wire types for the docchat backend, decoded at the boundary. Unknown or
// missing fields never propagate past this package: a body that does not
// decode into these shapes is reported as ErrMalformedResponse.

// ListResponse is the body of GET /pdfs.
type ListResponse struct {
	PDFs  []string `json:"pdfs"`
	Count int      `json:"count"`
}

// IngestionStatus reports whether the server rebuilt its index.
type IngestionStatus struct {
	Success bool `json:"success"`
}

// DeleteResponse is the body of DELETE /pdfs/{filename}. The server rebuilds
// its index as part of the delete and reports the outcome inline.
type DeleteResponse struct {
	Ingestion IngestionStatus `json:"ingestion"`
}

// IngestResponse is the body of POST /ingest.
type IngestResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Chunks  int      `json:"chunks"`
	Loaded  []string `json:"loaded"`
	Failed  []string `json:"failed"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatSource is one citation in a chat answer.
type ChatSource struct {
	PDF  string `json:"pdf"`
	Page int    `json:"page"`
}

// ChatResponse is the body of POST /chat.
type ChatResponse struct {
	Answer  string       `json:"answer"`
	Sources []ChatSource `json:"sources"`
}
