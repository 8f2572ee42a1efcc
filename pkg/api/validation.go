package api

import "fmt"

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxQuestionSize int // bytes, 0 disables the check
	MaxTopK         int // upper bound on requested top_k, 0 disables
	MaxUploadFiles  int // files per ingest request, 0 disables
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxQuestionSize: 32 * 1024, // 32KB
		MaxTopK:         100,
		MaxUploadFiles:  64,
	}
}

// ValidateAskRequest checks an AskRequest for validity. It returns an
// *APIError describing the first validation failure, or nil if the request
// is valid. An empty question is not a validation failure; it resolves to
// the no_question status downstream without touching any backend.
func ValidateAskRequest(req *AskRequest, cfg ValidationConfig) *APIError {
	if req.TopK < 0 {
		return NewInvalidRequestError("top_k", "top_k must not be negative")
	}

	if cfg.MaxTopK > 0 && req.TopK > cfg.MaxTopK {
		return NewInvalidRequestError("top_k",
			fmt.Sprintf("top_k exceeds maximum of %d", cfg.MaxTopK))
	}

	if cfg.MaxQuestionSize > 0 && len(req.Question) > cfg.MaxQuestionSize {
		return NewInvalidRequestError("question",
			fmt.Sprintf("question exceeds maximum of %d bytes", cfg.MaxQuestionSize))
	}

	return nil
}

// ValidateIngest checks an uploaded document batch against the configured
// limits before any extraction work is done.
func ValidateIngest(docs []Document, cfg ValidationConfig) *APIError {
	if len(docs) == 0 {
		return NewInvalidRequestError("files", "at least one file is required")
	}

	if cfg.MaxUploadFiles > 0 && len(docs) > cfg.MaxUploadFiles {
		return NewInvalidRequestError("files",
			fmt.Sprintf("upload exceeds maximum of %d files", cfg.MaxUploadFiles))
	}

	for _, d := range docs {
		if d.Name == "" {
			return NewInvalidRequestError("files", "every file needs a name")
		}
	}

	return nil
}
