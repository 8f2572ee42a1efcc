package pipeline

import (
	"fmt"
	"strings"

	"github.com/rhuss/auskunft/pkg/provider"
)

// systemPrompt pins the model to the retrieved context and asks for
// numeric citations.
const systemPrompt = "You are a helpful RAG assistant. " +
	"Answer the user's question using ONLY the provided context if possible. " +
	"If the answer is not in the context, say you don't have enough information. " +
	"Cite sources as [#] where # is the context index."

// insufficientAnswer is the fixed response when no index has been built.
const insufficientAnswer = "I don't have enough information to answer. " +
	"Please upload documents and build the index first."

// buildPrompt assembles the grounding prompt: the question plus the
// retrieved chunks as numbered, source-labeled context items.
func buildPrompt(question string, chunks []ScoredChunk) []provider.Message {
	items := make([]string, len(chunks))
	for i, c := range chunks {
		items[i] = fmt.Sprintf("[%d] (%s)\n%s", i+1, c.Source, c.Text)
	}

	user := fmt.Sprintf("Question:\n%s\n\nContext chunks:\n%s\n\n"+
		"Instructions:\n- If you use multiple chunks, cite like [1][3].\n- Be concise and precise.",
		question, strings.Join(items, "\n\n"))

	return []provider.Message{
		provider.SystemMessage(systemPrompt),
		provider.UserMessage(user),
	}
}

// preview returns the first limit characters of text, without splitting
// multi-byte runes.
func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
