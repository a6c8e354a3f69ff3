package dto

import (
	"github.com/google/uuid"
)

type UploadDocumentResponse struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	SourceTag     string    `json:"source_tag"`
	TextLength    int       `json:"text_length"`
	// Indexing runs in the background; retrieval falls back to the raw text
	// until it completes.
	Indexing bool `json:"indexing"`
}

// PublishIndexDocumentMessage is the bus payload that triggers a user-scope
// reindex after an upload.
type PublishIndexDocumentMessage struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	UserId        uuid.UUID `json:"user_id"`
	SourceTag     string    `json:"source_tag"`
	Text          string    `json:"text"`
}

type CorpusBuildResponse struct {
	Sources      int `json:"sources"`
	ChunksAdded  int `json:"chunks_added"`
	SkippedFiles int `json:"skipped_files"`
}
