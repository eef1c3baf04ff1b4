package nats

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/mongovec"
)

// badRequestErrors travel as code 400 and are restored by Error.
var badRequestErrors = []error{
	mongovec.ErrNoTexts,
	mongovec.ErrEmptyText,
	mongovec.ErrEmptyQuery,
	mongovec.ErrInvalidSearchParams,
}

func errorCode(err error) string {
	for _, sentinel := range badRequestErrors {
		if errors.Is(err, sentinel) {
			return "400"
		}
	}

	return "417"
}

func InsertHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req mongovec.InsertRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		ctx := context.Background()
		resp, err := endpoint(ctx, req)
		if err != nil {
			r.Error(errorCode(err), err.Error(), nil)
			return
		}

		r.RespondJSON(&resp)
	}
}

func SearchHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req mongovec.SearchRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		ctx := context.Background()
		resp, err := endpoint(ctx, req)
		if err != nil {
			r.Error(errorCode(err), err.Error(), nil)
			return
		}

		results, ok := resp.([]mongovec.SearchResult)
		if !ok {
			r.Error("500", "invalid response type", nil)
			return
		}

		r.RespondJSON(&results)
	}
}

func CountHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		ctx := context.Background()
		resp, err := endpoint(ctx, nil)
		if err != nil {
			r.Error(errorCode(err), err.Error(), nil)
			return
		}

		r.RespondJSON(&resp)
	}
}
