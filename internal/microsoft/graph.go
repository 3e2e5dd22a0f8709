package microsoft

import (
	"context"

	"github.com/FranLegon/cloud-drives-search/internal/search"
	msgraph "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
)

// drivePage is the part of every Graph drive item collection we read.
type drivePage interface {
	GetValue() []models.DriveItemable
	GetOdataNextLink() *string
}

// graphLister maps search types onto OneDrive endpoints of one drive.
type graphLister struct {
	graph   *msgraph.GraphServiceClient
	driveID string
}

func (g *graphLister) List(ctx context.Context, req search.Request, link string) (listing, error) {
	drive := g.graph.Drives().ByDriveId(g.driveID)

	switch req.Type {
	case search.NoSearch:
		folder := req.Query
		if folder == "" {
			folder = "root"
		}
		children := drive.Items().ByDriveItemId(folder).Children()
		if link != "" {
			children = children.WithUrl(link)
		}
		return toListing(children.Get(ctx, nil))

	case search.RecentlyModifiedSearch:
		return g.recent(ctx, link)

	case search.SharedFilter:
		shared := drive.SharedWithMe()
		if link != "" {
			shared = shared.WithUrl(link)
		}
		return toListing(shared.GetAsSharedWithMeGetResponse(ctx, nil))

	case search.GallerySearch:
		if req.Query == "" {
			return g.recent(ctx, link)
		}
	}

	q := req.Query
	found := drive.SearchWithQ(&q)
	if link != "" {
		found = found.WithUrl(link)
	}
	return toListing(found.GetAsSearchWithQGetResponse(ctx, nil))
}

func (g *graphLister) recent(ctx context.Context, link string) (listing, error) {
	recent := g.graph.Drives().ByDriveId(g.driveID).Recent()
	if link != "" {
		recent = recent.WithUrl(link)
	}
	return toListing(recent.GetAsRecentGetResponse(ctx, nil))
}

func toListing(page drivePage, err error) (listing, error) {
	if err != nil {
		return listing{}, err
	}
	if page == nil {
		return listing{}, nil
	}
	return listing{Items: page.GetValue(), NextLink: deref(page.GetOdataNextLink())}, nil
}
