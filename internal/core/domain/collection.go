package domain

import (
	"math"
	"sort"
)

// DefaultCollectionName is the vector collection used when none is configured.
const DefaultCollectionName = "medical_documents"

// IndexState is the lifecycle state of an index collection.
type IndexState int

const (
	// IndexAbsent means no collection exists.
	IndexAbsent IndexState = iota

	// IndexEmpty means the collection exists but holds no chunks.
	IndexEmpty

	// IndexPopulated means the collection holds at least one chunk.
	IndexPopulated
)

// String returns the state name.
func (s IndexState) String() string {
	switch s {
	case IndexAbsent:
		return "absent"
	case IndexEmpty:
		return "empty"
	case IndexPopulated:
		return "populated"
	default:
		return "unknown"
	}
}

// IndexCollection is the searchable store of chunk embeddings plus their text.
// ChunkCount equals the successful chunk inserts since the last clear.
type IndexCollection struct {
	// Name identifies the collection.
	Name string `json:"name"`

	// ChunkCount is the number of chunks currently indexed.
	ChunkCount int `json:"chunk_count"`
}

// StateOf derives the lifecycle state from existence and chunk count.
func StateOf(exists bool, count int) IndexState {
	switch {
	case !exists:
		return IndexAbsent
	case count == 0:
		return IndexEmpty
	default:
		return IndexPopulated
	}
}

// RetrievedChunk is a chunk returned by similarity search.
type RetrievedChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity with the query.
	Score float64

	// Sequence is the insertion order within the collection, used to break ties.
	Sequence int64
}

// RankRetrieved orders results by descending score; equal scores keep
// ascending insertion sequence.
func RankRetrieved(results []RetrievedChunk) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Sequence < results[j].Sequence
	})
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths and zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
