package mongovec

import (
	"context"
	"errors"
)

var ErrInvalidResponse = errors.New("invalid response type")

func ProxyMiddleware(endpoints *EndpointSet) ServiceMiddleware {
	return func(next Service) Service {
		return &proxyMiddleware{
			endpoints: endpoints,
		}
	}
}

type proxyMiddleware struct {
	endpoints *EndpointSet
}

// Close is a no-op; the remote service owns its connections.
func (mw *proxyMiddleware) Close() error {
	return nil
}

func (mw *proxyMiddleware) Insert(ctx context.Context, texts []string) (int, error) {
	req := InsertRequest{
		Texts: texts,
	}

	resp, err := mw.endpoints.Insert(ctx, req)
	if err != nil {
		return 0, err
	}

	result, ok := resp.(InsertResponse)
	if !ok {
		return 0, ErrInvalidResponse
	}

	return result.Inserted, nil
}

func (mw *proxyMiddleware) Search(ctx context.Context, query string, k ...int) ([]SearchResult, error) {
	n := 0
	if len(k) > 0 {
		n = k[0]
	}

	req := SearchRequest{
		Query: query,
		K:     n,
	}

	resp, err := mw.endpoints.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	results, ok := resp.([]SearchResult)
	if !ok {
		return nil, ErrInvalidResponse
	}

	return results, nil
}

func (mw *proxyMiddleware) Count(ctx context.Context) (int64, error) {
	resp, err := mw.endpoints.Count(ctx, nil)
	if err != nil {
		return 0, err
	}

	result, ok := resp.(CountResponse)
	if !ok {
		return 0, ErrInvalidResponse
	}

	return result.Count, nil
}

func (mw *proxyMiddleware) Seed(ctx context.Context, texts []string) (int, error) {
	count, err := mw.Count(ctx)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		return 0, nil
	}

	return mw.Insert(ctx, texts)
}
