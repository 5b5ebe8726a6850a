// Package rag provides the grounding-passage store for instruction
// generation: an in-memory vector index over Bedrock Titan embeddings with
// cosine retrieval. Retrieval is best-effort; failures degrade to an empty
// context rather than failing the request.
package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/firstaidguide/firstaid-api/pkg/logging"
)

// Passage is one retrieved grounding snippet.
type Passage struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type bedrockInvokeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Embedder turns text into a vector. Implemented by TitanEmbedder; tests
// substitute a deterministic fake.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// TitanEmbedder calls Amazon Titan text embeddings through Bedrock
// InvokeModel.
type TitanEmbedder struct {
	api     bedrockInvokeAPI
	modelID string
}

func NewTitanEmbedder(api bedrockInvokeAPI, modelID string) *TitanEmbedder {
	if modelID == "" {
		modelID = "amazon.titan-embed-text-v2:0"
	}
	return &TitanEmbedder{api: api, modelID: modelID}
}

func (e *TitanEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(map[string]string{"inputText": text})
	if err != nil {
		return nil, err
	}

	out, err := e.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.modelID),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("rag: titan embedding failed: %w", err)
	}

	var parsed struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(out.Body, &parsed); err != nil {
		return nil, fmt.Errorf("rag: invalid embedding response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, errors.New("rag: empty embedding")
	}
	return parsed.Embedding, nil
}

type document struct {
	id        string
	text      string
	embedding []float64
}

// MemoryStore keeps embedded passages in memory and answers queries by
// cosine similarity. Safe for concurrent use.
type MemoryStore struct {
	embedder Embedder
	logger   *logging.Logger

	mu   sync.RWMutex
	docs []document
}

func NewMemoryStore(embedder Embedder, logger *logging.Logger) *MemoryStore {
	if embedder == nil {
		panic("rag: embedder cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MemoryStore{embedder: embedder, logger: logger}
}

// AddDocuments embeds and stores the given passages. IDs are assigned
// sequentially from the current store size.
func (s *MemoryStore) AddDocuments(ctx context.Context, contents []string) error {
	for _, content := range contents {
		if content == "" {
			continue
		}
		vec, err := s.embedder.Embed(ctx, content)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.docs = append(s.docs, document{
			id:        fmt.Sprintf("guide-%03d", len(s.docs)+1),
			text:      content,
			embedding: vec,
		})
		s.mu.Unlock()
	}
	return nil
}

// Query embeds the query text and returns the topK most similar passages.
func (s *MemoryStore) Query(ctx context.Context, query string, topK int) ([]Passage, error) {
	if topK <= 0 {
		topK = 4
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	passages := make([]Passage, 0, len(s.docs))
	for _, doc := range s.docs {
		passages = append(passages, Passage{
			ID:    doc.id,
			Text:  doc.text,
			Score: cosine(vec, doc.embedding),
		})
	}
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})
	if len(passages) > topK {
		passages = passages[:topK]
	}
	return passages, nil
}

// Len returns the number of stored passages.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
