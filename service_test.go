package mongovec

import (
	"context"
	"errors"
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/flarexio/mongovec/embedding"
	"github.com/flarexio/mongovec/persistence/chromem"
	"github.com/flarexio/mongovec/vector"
)

// hashEmbedding is a deterministic stand-in for a sentence model.
func hashEmbedding(dims int) embedding.Func {
	return func(ctx context.Context, text string) ([]float32, error) {
		v := make([]float32, dims)
		for i := range v {
			h := fnv.New32a()
			h.Write([]byte{byte(i)})
			h.Write([]byte(text))
			v[i] = float32(h.Sum32()%1000)/1000 + 0.001
		}

		return v, nil
	}
}

type mongovecTestSuite struct {
	suite.Suite
	ctx context.Context
	svc Service
}

func (suite *mongovecTestSuite) SetupTest() {
	ctx := context.Background()

	cfg := Config{
		Vector: vector.Config{
			Store: vector.StoreTypeChromem,
			Chromem: vector.ChromemConfig{
				Persistent: false,
				Collection: "documents",
			},
		},
	}

	cfg.ApplyDefaults()

	embedder, err := embedding.FromFunc(ctx, hashEmbedding(16))
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	store, err := chromem.NewChromemStore(cfg.Vector.Chromem)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.ctx = ctx
	suite.svc = NewService(cfg, embedder, store)
}

func (suite *mongovecTestSuite) TestSearchEmptyStore() {
	results, err := suite.svc.Search(suite.ctx, "what is a database?")
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.NotNil(results)
	suite.Empty(results)
}

func (suite *mongovecTestSuite) TestInsertAddsEveryText() {
	n, err := suite.svc.Insert(suite.ctx, SampleTexts)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Equal(len(SampleTexts), n)

	count, err := suite.svc.Count(suite.ctx)
	suite.NoError(err)
	suite.Equal(int64(len(SampleTexts)), count)
}

func (suite *mongovecTestSuite) TestInsertIsNotIdempotent() {
	texts := []string{"MongoDB is a NoSQL database"}

	_, err := suite.svc.Insert(suite.ctx, texts)
	suite.NoError(err)

	_, err = suite.svc.Insert(suite.ctx, texts)
	suite.NoError(err)

	count, err := suite.svc.Count(suite.ctx)
	suite.NoError(err)
	suite.Equal(int64(2), count)
}

func (suite *mongovecTestSuite) TestInsertRejectsEmptyInput() {
	_, err := suite.svc.Insert(suite.ctx, nil)
	suite.ErrorIs(err, ErrNoTexts)

	_, err = suite.svc.Insert(suite.ctx, []string{"ok", ""})
	suite.ErrorIs(err, ErrEmptyText)

	count, err := suite.svc.Count(suite.ctx)
	suite.NoError(err)
	suite.Zero(count)
}

func (suite *mongovecTestSuite) TestInsertKeepsWhitespaceTexts() {
	n, err := suite.svc.Insert(suite.ctx, []string{"a", " ", "\t"})
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.Equal(3, n)

	count, err := suite.svc.Count(suite.ctx)
	suite.NoError(err)
	suite.Equal(int64(3), count)

	results, err := suite.svc.Search(suite.ctx, "  ", 3)
	suite.NoError(err)
	suite.Len(results, 3)
}

func (suite *mongovecTestSuite) TestSearchRespectsLimit() {
	_, err := suite.svc.Insert(suite.ctx, SampleTexts)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	results, err := suite.svc.Search(suite.ctx, "semantic similarity")
	suite.NoError(err)
	suite.Len(results, DefaultTopK)

	results, err = suite.svc.Search(suite.ctx, "semantic similarity", 2)
	suite.NoError(err)
	suite.Len(results, 2)

	results, err = suite.svc.Search(suite.ctx, "semantic similarity", 50)
	suite.NoError(err)
	suite.Len(results, len(SampleTexts))
}

func (suite *mongovecTestSuite) TestSearchOrderedByScore() {
	_, err := suite.svc.Insert(suite.ctx, SampleTexts)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	results, err := suite.svc.Search(suite.ctx, "Embeddings convert text into vectors", 5)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	for i := 1; i < len(results); i++ {
		suite.GreaterOrEqual(results[i-1].Score, results[i].Score)
	}

	suite.Equal("Embeddings convert text into vectors", results[0].Text)
}

func (suite *mongovecTestSuite) TestSearchValidation() {
	_, err := suite.svc.Search(suite.ctx, "")
	suite.ErrorIs(err, ErrEmptyQuery)
}

func (suite *mongovecTestSuite) TestSearchLimitBeyondCandidates() {
	_, err := suite.svc.Insert(suite.ctx, SampleTexts)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	// chromem searches exhaustively; the pool does not cap the limit
	results, err := suite.svc.Search(suite.ctx, "query", DefaultNumCandidates+1)
	suite.NoError(err)
	suite.Len(results, len(SampleTexts))
}

func (suite *mongovecTestSuite) TestSeedOnlyWhenEmpty() {
	n, err := suite.svc.Seed(suite.ctx, SampleTexts)
	suite.NoError(err)
	suite.Equal(len(SampleTexts), n)

	n, err = suite.svc.Seed(suite.ctx, SampleTexts)
	suite.NoError(err)
	suite.Zero(n)

	count, err := suite.svc.Count(suite.ctx)
	suite.NoError(err)
	suite.Equal(int64(len(SampleTexts)), count)
}

func (suite *mongovecTestSuite) TearDownTest() {
	if suite.svc != nil {
		suite.svc.Close()
	}

	suite.ctx = nil
	suite.svc = nil
}

func TestMongovecTestSuite(t *testing.T) {
	suite.Run(t, new(mongovecTestSuite))
}

type shortEmbedder struct{}

func (shortEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (shortEmbedder) Dimensions() int {
	return 4
}

type failingStore struct {
	vector.Store
	err error
}

func (s failingStore) InsertMany(ctx context.Context, docs []vector.Document) error {
	return s.err
}

func (s failingStore) Close(ctx context.Context) error {
	return nil
}

func TestInsertDimensionMismatch(t *testing.T) {
	assert := assert.New(t)

	svc := NewService(Config{}, shortEmbedder{}, failingStore{})

	_, err := svc.Insert(context.Background(), []string{"text"})
	assert.ErrorIs(err, ErrDimensionMismatch)
}

func TestInsertBatchFailure(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	embedder, err := embedding.FromFunc(ctx, hashEmbedding(4))
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	writeErr := errors.New("bulk write exception")
	svc := NewService(Config{}, embedder, failingStore{err: writeErr})

	n, err := svc.Insert(ctx, SampleTexts)
	assert.ErrorIs(err, writeErr)
	assert.Zero(n)
}
