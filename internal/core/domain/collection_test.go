package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateOf(t *testing.T) {
	assert.Equal(t, IndexAbsent, StateOf(false, 0))
	assert.Equal(t, IndexAbsent, StateOf(false, 12))
	assert.Equal(t, IndexEmpty, StateOf(true, 0))
	assert.Equal(t, IndexPopulated, StateOf(true, 1))
}

func TestIndexState_String(t *testing.T) {
	assert.Equal(t, "absent", IndexAbsent.String())
	assert.Equal(t, "empty", IndexEmpty.String())
	assert.Equal(t, "populated", IndexPopulated.String())
	assert.Equal(t, "unknown", IndexState(99).String())
}

func TestRankRetrieved(t *testing.T) {
	results := []RetrievedChunk{
		{Chunk: Chunk{ID: "c"}, Score: 0.5, Sequence: 3},
		{Chunk: Chunk{ID: "b"}, Score: 0.9, Sequence: 2},
		{Chunk: Chunk{ID: "a"}, Score: 0.5, Sequence: 1},
		{Chunk: Chunk{ID: "d"}, Score: 0.1, Sequence: 0},
	}

	RankRetrieved(results)

	var ids []string
	for _, r := range results {
		ids = append(ids, r.Chunk.ID)
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
}
