package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerIndexesQueuedSegments(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	store := newFakeStore()
	embeddings := newTestEmbeddingService(store, newBagOfWordsProvider(testVocabulary...), nil)
	consumer := NewConsumerService(pubSub, "index-segment-test", store, embeddings, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	queue := NewPublisherService("index-segment-test", pubSub)
	indexable := store.addSegment("The cat sat on the mat.", nil)
	unindexable := store.addSegment("nothing known here", nil)

	for _, id := range []uuid.UUID{unindexable.Id, uuid.New(), indexable.Id} {
		payload, err := json.Marshal(dto.PublishIndexSegmentMessage{SegmentId: id})
		require.NoError(t, err)
		require.NoError(t, queue.Publish(ctx, payload))
	}
	require.NoError(t, queue.Publish(ctx, []byte("not json")))

	assert.Eventually(t, func() bool {
		return embeddings.IndexSize() == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, ok := embeddings.(*embeddingService).currentIndex().Get(indexable.Id)
	assert.True(t, ok)
}
