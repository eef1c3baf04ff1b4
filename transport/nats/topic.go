package nats

import (
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/mongovec"
)

func AddEndpoints(group micro.Group, endpoints mongovec.EndpointSet) {
	group.AddEndpoint("insert", InsertHandler(endpoints.Insert))
	group.AddEndpoint("search", SearchHandler(endpoints.Search))
	group.AddEndpoint("count", CountHandler(endpoints.Count))
}
