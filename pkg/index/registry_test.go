package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/pkg/embedding"
	"ai-studypartner-be/pkg/store"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error { return nil }
func (nopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2}},
	}, nil
}

type fakeStore struct {
	replacedSession string
	replacedChunks  []Chunk
	appendedTag     string
	appendedChunks  []Chunk
	existingCount   int64
	searchDocs      []store.Document
	searchErr       error
	replaceErr      error
}

func (f *fakeStore) ReplaceSession(ctx context.Context, sessionID string, sourceTag string, chunks []Chunk, vectors [][]float32) error {
	f.replacedSession = sessionID
	f.replacedChunks = chunks
	return f.replaceErr
}

func (f *fakeStore) AppendReference(ctx context.Context, sourceTag string, chunks []Chunk, vectors [][]float32) error {
	f.appendedTag = sourceTag
	f.appendedChunks = chunks
	return nil
}

func (f *fakeStore) CountBySourceTag(ctx context.Context, scope string, sourceTag string) (int64, error) {
	return f.existingCount, nil
}

func (f *fakeStore) Search(ctx context.Context, scope string, sessionID string, vector []float32, k int) ([]store.Document, error) {
	return f.searchDocs, f.searchErr
}

func TestIndexUserReplacesSessionChunks(t *testing.T) {
	st := &fakeStore{}
	r := NewRegistry(&fakeEmbedder{}, st, nopLogger{})

	n, err := r.IndexUser(context.Background(), "s1", "some uploaded study notes", "notes.txt")

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "s1", st.replacedSession)
	require.Len(t, st.replacedChunks, 1)
	assert.Equal(t, 0, st.replacedChunks[0].Ordinal)
}

func TestIndexUserEmbeddingFailure(t *testing.T) {
	st := &fakeStore{}
	r := NewRegistry(&fakeEmbedder{err: errors.New("quota exceeded")}, st, nopLogger{})

	_, err := r.IndexUser(context.Background(), "s1", "text", "notes.txt")

	require.Error(t, err)
	assert.Empty(t, st.replacedSession, "a failed embed must never touch the store")
}

func TestClearUserWipesSession(t *testing.T) {
	st := &fakeStore{}
	r := NewRegistry(&fakeEmbedder{}, st, nopLogger{})

	require.NoError(t, r.ClearUser(context.Background(), "s1"))
	assert.Equal(t, "s1", st.replacedSession)
	assert.Nil(t, st.replacedChunks)
}

func TestIndexReferenceIsIdempotent(t *testing.T) {
	emb := &fakeEmbedder{}
	st := &fakeStore{existingCount: 3}
	r := NewRegistry(emb, st, nopLogger{})

	added, skipped, err := r.IndexReference(context.Background(), "faculty bio", "faculty/smith.md")

	require.NoError(t, err)
	assert.True(t, skipped)
	assert.Zero(t, added)
	assert.Zero(t, emb.calls, "an already-indexed source must not be re-embedded")
	assert.Empty(t, st.appendedTag)
}

func TestIndexReferenceAppendsNewSource(t *testing.T) {
	st := &fakeStore{}
	r := NewRegistry(&fakeEmbedder{}, st, nopLogger{})

	added, skipped, err := r.IndexReference(context.Background(), "faculty bio", "faculty/smith.md")

	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, 1, added)
	assert.Equal(t, "faculty/smith.md", st.appendedTag)
}

func TestRetrieveNeverFails(t *testing.T) {
	tests := []struct {
		name  string
		emb   *fakeEmbedder
		store *fakeStore
		want  int
	}{
		{
			"happy path",
			&fakeEmbedder{},
			&fakeStore{searchDocs: []store.Document{{Content: "hit"}}},
			1,
		},
		{
			"embedding failure yields empty",
			&fakeEmbedder{err: errors.New("quota exceeded")},
			&fakeStore{searchDocs: []store.Document{{Content: "hit"}}},
			0,
		},
		{
			"store failure yields empty",
			&fakeEmbedder{},
			&fakeStore{searchErr: errors.New("connection refused")},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(tt.emb, tt.store, nopLogger{})
			docs := r.Retrieve(context.Background(), ScopeUser, "s1", "query", 10)
			assert.Len(t, docs, tt.want)
		})
	}
}

func TestRetrieveDuringRebuildReturnsEmpty(t *testing.T) {
	st := &fakeStore{searchDocs: []store.Document{{Content: "hit"}}}
	r := NewRegistry(&fakeEmbedder{}, st, nopLogger{})

	h := r.handle(ScopeUser)
	h.rw.Lock()
	defer h.rw.Unlock()

	docs := r.Retrieve(context.Background(), ScopeUser, "s1", "query", 10)
	assert.Nil(t, docs, "retrieval during a rebuild falls back instead of blocking")
}

func TestEmbedChunksHonorsContextCancellation(t *testing.T) {
	r := NewRegistry(&fakeEmbedder{}, &fakeStore{}, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.embedChunks(ctx, "some text")
	assert.ErrorIs(t, err, context.Canceled)
}
