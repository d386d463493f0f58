package history

import (
	"context"
	"fmt"
	"strings"

	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/store"

	"github.com/philippgille/chromem-go"
)

const summaryCollection = "standup-summaries"

// Embedder produces the vector for one text. The model router satisfies this;
// tests inject a deterministic fake.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type SearchResult struct {
	ID      string
	Date    string
	Summary string
	Score   float32
}

// Index upserts one record's summary into the persistent semantic index. The
// DB handle lives only for the duration of the call.
func (s *Store) Index(ctx context.Context, emb Embedder, rec Record) error {
	vector, err := emb.Embed(ctx, rec.Summary)
	if err != nil {
		return serrors.Wrap(err, "embed summary")
	}

	db, err := s.openVectors()
	if err != nil {
		return err
	}

	col, err := db.GetOrCreateCollection(summaryCollection, nil, nil)
	if err != nil {
		return serrors.Wrap(err, "open summary collection")
	}

	doc := chromem.Document{
		ID:        rec.ID,
		Embedding: vector,
		Content:   rec.Summary,
		Metadata:  map[string]string{"date": rec.Date},
	}
	if err := col.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return serrors.Wrap(err, "index summary")
	}
	return nil
}

// Search returns the saved summaries nearest to the query, best first. An
// empty index yields an empty result, not an error.
func (s *Store) Search(ctx context.Context, emb Embedder, query string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, serrors.InvalidInput("search query is empty")
	}
	if limit <= 0 {
		limit = 5
	}

	db, err := s.openVectors()
	if err != nil {
		return nil, err
	}

	col := db.GetCollection(summaryCollection, nil)
	if col == nil || col.Count() == 0 {
		return nil, nil
	}

	vector, err := emb.Embed(ctx, query)
	if err != nil {
		return nil, serrors.Wrap(err, "embed query")
	}

	if count := col.Count(); limit > count {
		limit = count
	}

	docs, err := col.QueryEmbedding(ctx, vector, limit, nil, nil)
	if err != nil {
		return nil, serrors.Wrap(err, "query summary index")
	}

	results := make([]SearchResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, SearchResult{
			ID:      doc.ID,
			Date:    doc.Metadata["date"],
			Summary: doc.Content,
			Score:   doc.Similarity,
		})
	}
	return results, nil
}

func (s *Store) openVectors() (*chromem.DB, error) {
	dir := store.VectorsDir(s.baseDir)
	if err := store.EnsureDir(dir); err != nil {
		return nil, serrors.Wrap(err, "create vectors dir")
	}

	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}
	return db, nil
}
