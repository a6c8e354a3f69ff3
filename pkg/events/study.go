package events

import "time"

// Event type codes published on the bus.
const (
	TypeDocumentIndexed = "document.indexed"
	TypeCorpusBuilt     = "corpus.built"
	TypeSessionCleared  = "session.cleared"
)

// NewDocumentIndexed fires after an uploaded document finished (re)indexing
// for a session. user_id drives notification targeting.
func NewDocumentIndexed(sessionID, userID, sourceTag string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentIndexed,
		Data: map[string]interface{}{
			"session_id":  sessionID,
			"user_id":     userID,
			"source_tag":  sourceTag,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewCorpusBuilt fires after the durable reference corpus finished building.
func NewCorpusBuilt(sourceTag string, chunkCount int, skipped bool) Event {
	return BaseEvent{
		Type: TypeCorpusBuilt,
		Data: map[string]interface{}{
			"source_tag":  sourceTag,
			"chunk_count": chunkCount,
			"skipped":     skipped,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionCleared fires when a session's context is wiped.
func NewSessionCleared(sessionID, userID string) Event {
	return BaseEvent{
		Type: TypeSessionCleared,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
		},
		OccurredAt: time.Now(),
	}
}
