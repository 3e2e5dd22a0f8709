package search

import (
	"context"

	"github.com/FranLegon/cloud-drives-search/internal/logger"
	"github.com/FranLegon/cloud-drives-search/internal/model"
)

// Fetcher returns one page of results for a request. Page numbers start at
// FirstPage; the returned NextPageToken is either the next page number or
// PageEnd.
type Fetcher interface {
	Fetch(ctx context.Context, req Request, page int) (ResultPage, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req Request, page int) (ResultPage, error)

func (f FetcherFunc) Fetch(ctx context.Context, req Request, page int) (ResultPage, error) {
	return f(ctx, req, page)
}

// CacheReader returns previously fetched items for instant display.
type CacheReader interface {
	Cached(ctx context.Context, req Request) ([]model.Item, error)
}

// PageStore persists fetched pages and serves them back.
type PageStore interface {
	CacheReader
	StorePage(ctx context.Context, req Request, page int, items []model.Item) error
}

// Router sends remote search types to a provider and local ones to the
// local store, recording every successful remote page in the store.
type Router struct {
	Remote Fetcher
	Local  Fetcher
	Store  PageStore
}

func (r *Router) Fetch(ctx context.Context, req Request, page int) (ResultPage, error) {
	if !req.Type.Remote() {
		if r.Local == nil {
			return ResultPage{}, Unsupported("local fetch", req.Type)
		}
		return r.Local.Fetch(ctx, req, page)
	}
	if r.Remote == nil {
		return ResultPage{}, NewError(KindAuth, "remote fetch", ErrNoAccount)
	}

	result, err := r.Remote.Fetch(ctx, req, page)
	if err != nil {
		return result, err
	}
	if r.Store != nil {
		if err := r.Store.StorePage(ctx, req, page, result.Items); err != nil {
			logger.WarningTagged([]string{"cache"}, "Failed to store page %d of %s: %v", page, req, err)
		}
	}
	return result, nil
}

// Cached returns stored items for remote requests. Local requests are
// answered by the store directly and have nothing to preview.
func (r *Router) Cached(ctx context.Context, req Request) ([]model.Item, error) {
	if r.Store == nil || !req.Type.Remote() {
		return nil, nil
	}
	return r.Store.Cached(ctx, req)
}
