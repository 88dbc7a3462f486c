package cache

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/peertrade/peertrade/internal/metrics"
	"github.com/peertrade/peertrade/internal/repository"
)

type RequestRepository interface {
	GetAllOpen(ctx context.Context) ([]*repository.Request, error)
}

// RequestCache keeps open requests in memory so the hot negotiation paths
// avoid a read per operation. Requests leave the cache as soon as they stop
// being OPEN.
type RequestCache struct {
	mu     sync.RWMutex
	cache  map[string]*repository.Request
	repo   RequestRepository
	logger *zap.Logger
}

func NewRequestCache(repo RequestRepository, logger *zap.Logger) *RequestCache {
	return &RequestCache{
		cache:  make(map[string]*repository.Request),
		repo:   repo,
		logger: logger,
	}
}

func (c *RequestCache) LoadInitialData(ctx context.Context) error {
	reqs, err := c.repo.GetAllOpen(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, req := range reqs {
		reqCopy := *req
		c.cache[req.ID] = &reqCopy
	}
	metrics.RequestCacheItems.Set(float64(len(c.cache)))
	c.logger.Info("request cache warmed", zap.Int("open_requests", len(c.cache)))
	return nil
}

func (c *RequestCache) Get(requestID string) (*repository.Request, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	req, found := c.cache[requestID]
	if !found {
		return nil, false
	}
	reqCopy := *req
	return &reqCopy, true
}

func (c *RequestCache) Set(req *repository.Request) {
	if req.Status != repository.RequestStatusOpen {
		c.Delete(req.ID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	reqCopy := *req
	c.cache[req.ID] = &reqCopy
	metrics.RequestCacheItems.Set(float64(len(c.cache)))
}

func (c *RequestCache) Delete(requestID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, found := c.cache[requestID]; found {
		delete(c.cache, requestID)
		metrics.RequestCacheItems.Set(float64(len(c.cache)))
	}
}
