package api

import "encoding/json"

// Status values returned in the Status field of operation responses.
const (
	// StatusOK indicates the operation completed normally.
	StatusOK = "ok"

	// StatusNoQuestion indicates an ask request carried an empty question.
	// No retrieval or generation is attempted.
	StatusNoQuestion = "no_question"
)

// Document is a single uploaded document: raw bytes plus the client-supplied
// file name. The name doubles as the source label attached to every chunk
// produced from it.
type Document struct {
	Name string
	Data []byte
}

// IngestResponse reports the outcome of a document ingestion.
type IngestResponse struct {
	Status      string `json:"status"`
	Files       int    `json:"files"`
	ChunksAdded int    `json:"chunks_added"`
	TotalChunks int    `json:"total_chunks"`
}

// BuildResponse reports the outcome of an index build. Chunks is the number
// of chunks embedded and indexed; zero means the corpus was empty and no
// index exists, which Message explains.
type BuildResponse struct {
	Status  string `json:"status"`
	Chunks  int    `json:"chunks"`
	Message string `json:"message,omitempty"`
}

// AskRequest is a question against the indexed corpus. TopK limits how many
// chunks ground the answer; zero or absent selects the configured default.
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// Source identifies one retrieved chunk backing an answer. ID is the 1-based
// citation number used in the answer text, Source the originating file name,
// and Preview the leading portion of the chunk text.
type Source struct {
	ID      int    `json:"id"`
	Source  string `json:"source"`
	Preview string `json:"preview"`
}

// AskResponse carries a generated answer and the chunks it was grounded on.
type AskResponse struct {
	Status  string   `json:"-"`
	Answer  string   `json:"-"`
	Sources []Source `json:"-"`
}

// MarshalJSON ensures Sources is always an array, never null.
func (r AskResponse) MarshalJSON() ([]byte, error) {
	type wire struct {
		Status  string   `json:"status"`
		Answer  string   `json:"answer"`
		Sources []Source `json:"sources"`
	}
	w := wire{Status: r.Status, Answer: r.Answer, Sources: r.Sources}
	if w.Sources == nil {
		w.Sources = []Source{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON deserializes an AskResponse.
func (r *AskResponse) UnmarshalJSON(data []byte) error {
	type wire struct {
		Status  string   `json:"status"`
		Answer  string   `json:"answer"`
		Sources []Source `json:"sources"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Status = w.Status
	r.Answer = w.Answer
	r.Sources = w.Sources
	return nil
}

// ResetResponse reports the outcome of a reset.
type ResetResponse struct {
	Status string `json:"status"`
}
