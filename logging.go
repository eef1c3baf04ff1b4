package mongovec

import (
	"context"

	"go.uber.org/zap"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	log = log.With(
		zap.String("service", "mongovec"),
	)

	return func(next Service) Service {
		log.Info("service initialized")

		return &loggingMiddleware{
			log:  log,
			next: next,
		}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) Close() error {
	log := mw.log.With(
		zap.String("action", "close"),
	)

	err := mw.next.Close()
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("service closed")
	return nil
}

func (mw *loggingMiddleware) Insert(ctx context.Context, texts []string) (int, error) {
	log := mw.log.With(
		zap.String("action", "insert"),
		zap.Int("texts", len(texts)),
	)

	n, err := mw.next.Insert(ctx, texts)
	if err != nil {
		log.Error(err.Error())
		return 0, err
	}

	log.Info("documents inserted", zap.Int("count", n))
	return n, nil
}

func (mw *loggingMiddleware) Search(ctx context.Context, query string, k ...int) ([]SearchResult, error) {
	var n int
	if len(k) > 0 {
		n = k[0]
	}

	log := mw.log.With(
		zap.String("action", "search"),
		zap.String("query", query),
	)

	if n > 0 {
		log = log.With(
			zap.Int("k", n),
		)
	}

	results, err := mw.next.Search(ctx, query, k...)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("documents searched", zap.Int("count", len(results)))
	return results, nil
}

func (mw *loggingMiddleware) Count(ctx context.Context) (int64, error) {
	log := mw.log.With(
		zap.String("action", "count"),
	)

	count, err := mw.next.Count(ctx)
	if err != nil {
		log.Error(err.Error())
		return 0, err
	}

	log.Debug("documents counted", zap.Int64("count", count))
	return count, nil
}

func (mw *loggingMiddleware) Seed(ctx context.Context, texts []string) (int, error) {
	log := mw.log.With(
		zap.String("action", "seed"),
		zap.Int("texts", len(texts)),
	)

	n, err := mw.next.Seed(ctx, texts)
	if err != nil {
		log.Error(err.Error())
		return 0, err
	}

	log.Info("store seeded", zap.Int("count", n))
	return n, nil
}
