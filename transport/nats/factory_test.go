package nats

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/stretchr/testify/assert"

	"github.com/flarexio/mongovec"
)

func TestError(t *testing.T) {
	assert := assert.New(t)

	assert.Error(Error(nil))

	msg := nats.NewMsg("edges.test.mongovec.search")
	assert.NoError(Error(msg))

	msg.Header.Set(micro.ErrorCodeHeader, "400")
	msg.Header.Set(micro.ErrorHeader, "empty query")
	assert.ErrorIs(Error(msg), mongovec.ErrEmptyQuery)

	msg = nats.NewMsg("edges.test.mongovec.insert")
	msg.Header.Set(micro.ErrorCodeHeader, "400")
	msg.Header.Set(micro.ErrorHeader, "empty text at position 1")
	err := Error(msg)
	assert.ErrorIs(err, mongovec.ErrEmptyText)
	assert.EqualError(err, "empty text at position 1")

	msg = nats.NewMsg("edges.test.mongovec.search")
	msg.Header.Set(micro.ErrorCodeHeader, "400")
	msg.Header.Set(micro.ErrorHeader, "invalid character 'x'")
	assert.EqualError(Error(msg), "400:invalid character 'x'")

	msg = nats.NewMsg("edges.test.mongovec.count")
	msg.Header.Set(micro.ErrorCodeHeader, "417")
	assert.EqualError(Error(msg), "417:unknown error")
}

func TestErrorCode(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("400", errorCode(mongovec.ErrEmptyQuery))
	assert.Equal("400", errorCode(mongovec.ErrNoTexts))
	assert.Equal("400", errorCode(fmt.Errorf("%w at position 2", mongovec.ErrEmptyText)))
	assert.Equal("417", errorCode(errors.New("server selection timeout")))
}
