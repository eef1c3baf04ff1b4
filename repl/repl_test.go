package repl

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flarexio/mongovec"
)

type stubSearcher struct {
	queries []string
	results []mongovec.SearchResult
	err     error
}

func (s *stubSearcher) Search(ctx context.Context, query string, k ...int) ([]mongovec.SearchResult, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

func TestRunPrintsResults(t *testing.T) {
	assert := assert.New(t)

	svc := &stubSearcher{
		results: []mongovec.SearchResult{
			{Text: "MongoDB is a NoSQL database", Score: 0.912345},
			{Text: "Vector search enables semantic similarity", Score: 0.7},
		},
	}

	in := strings.NewReader("  nosql database  \nexit\n")
	var out bytes.Buffer

	err := Run(context.Background(), svc, in, &out, 3)
	assert.NoError(err)
	assert.Equal([]string{"nosql database"}, svc.queries)

	expected := Prompt +
		"\nResults:\n\n" +
		"1. Score: 0.9123\n   Text: MongoDB is a NoSQL database\n\n" +
		"2. Score: 0.7000\n   Text: Vector search enables semantic similarity\n\n" +
		Prompt

	assert.Equal(expected, out.String())
}

func TestRunNoResults(t *testing.T) {
	assert := assert.New(t)

	svc := &stubSearcher{}

	var out bytes.Buffer
	err := Run(context.Background(), svc, strings.NewReader("anything\nQUIT\n"), &out, 3)
	assert.NoError(err)
	assert.Contains(out.String(), "No results found\n\n")
}

func TestRunSkipsBlankLinesAndStopsAtEOF(t *testing.T) {
	assert := assert.New(t)

	svc := &stubSearcher{}

	var out bytes.Buffer
	err := Run(context.Background(), svc, strings.NewReader("\n   \n"), &out, 3)
	assert.NoError(err)
	assert.Empty(svc.queries)
	assert.Equal(3, strings.Count(out.String(), Prompt))
}

func TestRunSearchFailure(t *testing.T) {
	assert := assert.New(t)

	failure := errors.New("connection reset")
	svc := &stubSearcher{err: failure}

	var out bytes.Buffer
	err := Run(context.Background(), svc, strings.NewReader("query\nexit\n"), &out, 3)
	assert.ErrorIs(err, failure)
}

func TestRunLongLine(t *testing.T) {
	assert := assert.New(t)

	svc := &stubSearcher{}
	query := strings.Repeat("vector ", 10000)

	var out bytes.Buffer
	err := Run(context.Background(), svc, strings.NewReader(query+"\nexit\n"), &out, 3)
	assert.NoError(err)

	if assert.Len(svc.queries, 1) {
		assert.Equal(strings.TrimSpace(query), svc.queries[0])
	}
}

func TestRunLastLineWithoutNewline(t *testing.T) {
	assert := assert.New(t)

	svc := &stubSearcher{}

	var out bytes.Buffer
	err := Run(context.Background(), svc, strings.NewReader("nosql"), &out, 3)
	assert.NoError(err)
	assert.Equal([]string{"nosql"}, svc.queries)
}
