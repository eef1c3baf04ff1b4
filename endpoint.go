package mongovec

import (
	"context"
	"errors"

	"github.com/go-kit/kit/endpoint"
)

type EndpointSet struct {
	Insert endpoint.Endpoint
	Search endpoint.Endpoint
	Count  endpoint.Endpoint
}

func MakeEndpoints(svc Service) EndpointSet {
	return EndpointSet{
		Insert: InsertEndpoint(svc),
		Search: SearchEndpoint(svc),
		Count:  CountEndpoint(svc),
	}
}

type InsertRequest struct {
	Texts []string `json:"texts" binding:"required"`
}

type InsertResponse struct {
	Inserted int `json:"inserted"`
}

func InsertEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(InsertRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		n, err := svc.Insert(ctx, req.Texts)
		if err != nil {
			return nil, err
		}

		return InsertResponse{Inserted: n}, nil
	}
}

type SearchRequest struct {
	Query string `json:"query" form:"query"`
	K     int    `json:"k,omitempty" form:"k"`
}

func SearchEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(SearchRequest)
		if !ok {
			return nil, errors.New("invalid request type")
		}

		return svc.Search(ctx, req.Query, req.K)
	}
}

type CountResponse struct {
	Count int64 `json:"count"`
}

func CountEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		count, err := svc.Count(ctx)
		if err != nil {
			return nil, err
		}

		return CountResponse{Count: count}, nil
	}
}
