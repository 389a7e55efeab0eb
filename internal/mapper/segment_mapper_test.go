package mapper

import (
	"testing"
	"time"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentMapper_VectorRoundTrip(t *testing.T) {
	m := NewSegmentMapper()
	in := &entity.Segment{
		Id:         uuid.New(),
		DocumentId: uuid.New(),
		ChunkIndex: 2,
		Content:    "The cat sat on the mat.",
		Vector:     []float32{0.25, -1.5, 3},
		CreatedAt:  time.Now(),
	}

	row := m.ToModel(in)
	require.NotNil(t, row.EmbeddingValue)
	assert.Len(t, row.Vector, 12)
	assert.Equal(t, in.Vector, row.EmbeddingValue.Slice())

	out := m.ToEntity(row)
	assert.Equal(t, in.Id, out.Id)
	assert.Equal(t, in.DocumentId, out.DocumentId)
	assert.Equal(t, 2, out.ChunkIndex)
	assert.Equal(t, in.Vector, out.Vector)
	assert.False(t, out.IsDeleted)
}

func TestSegmentMapper_UnindexedSegment(t *testing.T) {
	m := NewSegmentMapper()

	row := m.ToModel(&entity.Segment{Id: uuid.New(), Content: "no vector yet"})
	assert.Nil(t, row.Vector)
	assert.Nil(t, row.EmbeddingValue)

	out := m.ToEntity(row)
	assert.False(t, out.HasVector())
}

func TestSegmentMapper_CorruptVectorLeavesSegmentUnindexed(t *testing.T) {
	out := NewSegmentMapper().ToEntity(&model.Segment{
		Id:      uuid.New(),
		Content: "broken",
		Vector:  []byte{1, 2, 3},
	})

	assert.False(t, out.HasVector())
	assert.Equal(t, "broken", out.Content)
}
