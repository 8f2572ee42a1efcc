package api

import (
	"strings"
	"testing"
)

func TestValidateAskRequest(t *testing.T) {
	cfg := DefaultValidationConfig()

	tests := []struct {
		name      string
		req       AskRequest
		wantParam string // "" means valid
	}{
		{"valid", AskRequest{Question: "What sat?", TopK: 3}, ""},
		{"valid default top_k", AskRequest{Question: "What sat?"}, ""},
		{"empty question is not a validation error", AskRequest{Question: ""}, ""},
		{"negative top_k", AskRequest{Question: "q", TopK: -1}, "top_k"},
		{"excessive top_k", AskRequest{Question: "q", TopK: cfg.MaxTopK + 1}, "top_k"},
		{"oversized question", AskRequest{Question: strings.Repeat("x", cfg.MaxQuestionSize+1)}, "question"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAskRequest(&tt.req, cfg)
			if tt.wantParam == "" {
				if err != nil {
					t.Fatalf("ValidateAskRequest() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateAskRequest() = nil, want error")
			}
			if err.Param != tt.wantParam {
				t.Errorf("Param = %q, want %q", err.Param, tt.wantParam)
			}
			if err.Type != ErrorTypeInvalidRequest {
				t.Errorf("Type = %q, want %q", err.Type, ErrorTypeInvalidRequest)
			}
		})
	}
}

func TestValidateAskRequest_DisabledLimits(t *testing.T) {
	cfg := ValidationConfig{}

	req := AskRequest{Question: strings.Repeat("x", 1<<20), TopK: 5000}
	if err := ValidateAskRequest(&req, cfg); err != nil {
		t.Fatalf("ValidateAskRequest() with zeroed limits = %v, want nil", err)
	}
}

func TestValidateIngest(t *testing.T) {
	cfg := DefaultValidationConfig()

	manyDocs := make([]Document, cfg.MaxUploadFiles+1)
	for i := range manyDocs {
		manyDocs[i] = Document{Name: "f.txt"}
	}

	tests := []struct {
		name      string
		docs      []Document
		wantParam string
	}{
		{"valid", []Document{{Name: "a.txt", Data: []byte("hi")}}, ""},
		{"no files", nil, "files"},
		{"unnamed file", []Document{{Data: []byte("hi")}}, "files"},
		{"too many files", manyDocs, "files"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIngest(tt.docs, cfg)
			if tt.wantParam == "" {
				if err != nil {
					t.Fatalf("ValidateIngest() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateIngest() = nil, want error")
			}
			if err.Param != tt.wantParam {
				t.Errorf("Param = %q, want %q", err.Param, tt.wantParam)
			}
		})
	}
}
