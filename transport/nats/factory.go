package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/mongovec"
)

func MakeEndpoints(nc *nats.Conn, prefix string) *mongovec.EndpointSet {
	return &mongovec.EndpointSet{
		Insert: InsertEndpoint(nc, prefix+".insert"),
		Search: SearchEndpoint(nc, prefix+".search"),
		Count:  CountEndpoint(nc, prefix+".count"),
	}
}

func requestData(ctx context.Context, nc *nats.Conn, topic string, data []byte) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, nats.DefaultTimeout)
		defer cancel()
	}

	resp, err := nc.RequestWithContext(ctx, topic, data)
	if err != nil {
		return nil, err
	}

	if err := Error(resp); err != nil {
		return nil, err
	}

	return resp.Data, nil
}

func InsertEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(mongovec.InsertRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		bs, err := requestData(ctx, nc, topic, data)
		if err != nil {
			return nil, err
		}

		var resp mongovec.InsertResponse
		if err := json.Unmarshal(bs, &resp); err != nil {
			return nil, err
		}

		return resp, nil
	}
}

func SearchEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(mongovec.SearchRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}

		data, err := json.Marshal(&req)
		if err != nil {
			return nil, err
		}

		bs, err := requestData(ctx, nc, topic, data)
		if err != nil {
			return nil, err
		}

		results := make([]mongovec.SearchResult, 0)
		if err := json.Unmarshal(bs, &results); err != nil {
			return nil, err
		}

		return results, nil
	}
}

func CountEndpoint(nc *nats.Conn, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		bs, err := requestData(ctx, nc, topic, nil)
		if err != nil {
			return nil, err
		}

		var resp mongovec.CountResponse
		if err := json.Unmarshal(bs, &resp); err != nil {
			return nil, err
		}

		return resp, nil
	}
}

func Error(msg *nats.Msg) error {
	if msg == nil {
		return errors.New("nil message")
	}

	code := msg.Header.Get(micro.ErrorCodeHeader)
	if code == "" {
		return nil
	}

	description := msg.Header.Get(micro.ErrorHeader)
	if description == "" {
		description = "unknown error"
	}

	if code == "400" {
		for _, sentinel := range badRequestErrors {
			prefix := sentinel.Error()
			if description == prefix {
				return sentinel
			}

			if strings.HasPrefix(description, prefix) {
				return fmt.Errorf("%w%s", sentinel, strings.TrimPrefix(description, prefix))
			}
		}
	}

	return errors.New(code + ":" + description)
}
