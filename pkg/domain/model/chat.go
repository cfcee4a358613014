package model

import "github.com/halcyon-lab/minerva/pkg/domain/types"

// Source describes one retrieved record cited in a chat answer
type Source struct {
	ID         types.RecordID    `json:"id"`
	Snippet    string            `json:"snippet"`
	Similarity float64           `json:"similarity"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

const snippetMaxLen = 200

// NewSource builds a citation from a scored record, truncating the
// content to a preview-sized snippet.
func NewSource(sr *ScoredRecord) Source {
	snippet := sr.Record.Content
	if len(snippet) > snippetMaxLen {
		snippet = snippet[:snippetMaxLen] + "..."
	}
	return Source{
		ID:         sr.Record.ID,
		Snippet:    snippet,
		Similarity: sr.Similarity,
		Metadata:   sr.Record.Metadata,
	}
}

// ChatResult is the outcome of one chat exchange
type ChatResult struct {
	Answer         string
	Sources        []Source
	ConversationID types.ConversationID
	Provider       types.ProviderID
	FallbackUsed   bool
	Cached         bool
}
