package mongovec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flarexio/mongovec/embedding"
	"github.com/flarexio/mongovec/persistence/chromem"
	"github.com/flarexio/mongovec/vector"
)

func TestProxyMiddlewareRoundTrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	embedder, err := embedding.FromFunc(ctx, hashEmbedding(8))
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	store, err := chromem.NewChromemStore(vector.ChromemConfig{Collection: "proxy"})
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	local := NewService(Config{}, embedder, store)
	endpoints := MakeEndpoints(local)

	var svc Service
	svc = ProxyMiddleware(&endpoints)(svc)

	n, err := svc.Seed(ctx, SampleTexts)
	assert.NoError(err)
	assert.Equal(len(SampleTexts), n)

	n, err = svc.Seed(ctx, SampleTexts)
	assert.NoError(err)
	assert.Zero(n)

	count, err := svc.Count(ctx)
	assert.NoError(err)
	assert.Equal(int64(len(SampleTexts)), count)

	results, err := svc.Search(ctx, "MongoDB is a NoSQL database", 2)
	assert.NoError(err)
	assert.Len(results, 2)
	assert.Equal("MongoDB is a NoSQL database", results[0].Text)

	_, err = svc.Search(ctx, "")
	assert.ErrorIs(err, ErrEmptyQuery)

	assert.NoError(svc.Close())
}
