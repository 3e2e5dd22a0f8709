package microsoft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/FranLegon/cloud-drives-search/internal/logger"
	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/FranLegon/cloud-drives-search/internal/retry"
	"github.com/FranLegon/cloud-drives-search/internal/search"
	msgraph "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
)

var graphScopes = []string{"https://graph.microsoft.com/.default"}

// listing is one page of drive items and the link to the next one.
type listing struct {
	Items    []models.DriveItemable
	NextLink string
}

// lister performs a single Graph listing call. An empty link asks for the
// first page.
type lister interface {
	List(ctx context.Context, req search.Request, link string) (listing, error)
}

// Client answers remote searches from OneDrive.
type Client struct {
	lister lister
	user   model.User
	policy retry.Policy

	mu    sync.Mutex
	links map[string]map[int]string
}

// NewClient creates a OneDrive client for the signed-in user.
func NewClient(ctx context.Context, cred azcore.TokenCredential, user model.User) (*Client, error) {
	graph, err := msgraph.NewGraphServiceClientWithCredentials(cred, graphScopes)
	if err != nil {
		return nil, fmt.Errorf("error creating graph client: %w", err)
	}
	drive, err := graph.Me().Drive().Get(ctx, nil)
	if err != nil {
		return nil, classifyError("get drive", err)
	}
	if drive.GetId() == nil {
		return nil, errors.New("graph did not return a drive id")
	}
	return newClient(&graphLister{graph: graph, driveID: *drive.GetId()}, user), nil
}

func newClient(l lister, user model.User) *Client {
	return &Client{
		lister: l,
		user:   user,
		policy: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			Retryable: func(err error) bool {
				var fe *search.FetchError
				return errors.As(err, &fe) && fe.Retryable()
			},
		},
		links: make(map[string]map[int]string),
	}
}

// Email returns the user principal name or mail of the signed-in user.
func Email(ctx context.Context, cred azcore.TokenCredential) (string, error) {
	graph, err := msgraph.NewGraphServiceClientWithCredentials(cred, graphScopes)
	if err != nil {
		return "", fmt.Errorf("error creating graph client: %w", err)
	}
	user, err := graph.Me().Get(ctx, nil)
	if err != nil {
		return "", classifyError("get user", err)
	}
	if upn := user.GetUserPrincipalName(); upn != nil && *upn != "" {
		return *upn, nil
	}
	if mail := user.GetMail(); mail != nil && *mail != "" {
		return *mail, nil
	}
	return "", errors.New("user email not found")
}

// Fetch lists one page of results for req.
func (c *Client) Fetch(ctx context.Context, req search.Request, page int) (search.ResultPage, error) {
	switch {
	case !req.Type.Remote():
		return search.ResultPage{}, search.Unsupported("onedrive search", req.Type)
	case req.Type == search.FavoriteSearch:
		// OneDrive has no starred flag.
		return search.ResultPage{}, search.Unsupported("onedrive search", req.Type)
	}

	link, err := c.pageLink(req, page)
	if err != nil {
		return search.ResultPage{}, err
	}

	logger.DebugTagged([]string{"Microsoft", c.user.Email}, "Listing page %d of %s", page, req)

	var res listing
	err = retry.Do(ctx, c.policy, func() error {
		var listErr error
		res, listErr = c.lister.List(ctx, req, link)
		if listErr != nil {
			return classifyError("list items", listErr)
		}
		return nil
	})
	if err != nil {
		return search.ResultPage{}, err
	}

	items := make([]model.Item, 0, len(res.Items))
	for _, di := range res.Items {
		it := c.toItem(di)
		if !keep(req, it) {
			continue
		}
		items = append(items, it)
	}

	result := search.ResultPage{Items: items, NextPageToken: search.PageEnd}
	if res.NextLink != "" {
		result.NextPageToken = page + 1
		c.rememberLink(req, page+1, res.NextLink)
	}
	return result, nil
}

// keep applies the filters Graph cannot express for the request type.
func keep(req search.Request, it model.Item) bool {
	if req.OnlyFolders && !it.IsFolder {
		return false
	}
	if req.Type == search.GallerySearch && !it.IsMedia() {
		return false
	}
	if (req.Type == search.RecentlyModifiedSearch || req.Type == search.SharedFilter) && req.Query != "" {
		return strings.Contains(strings.ToLower(it.Name), strings.ToLower(req.Query))
	}
	return true
}

func (c *Client) pageLink(req search.Request, page int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if page == search.FirstPage {
		delete(c.links, req.Key())
		return "", nil
	}
	link, ok := c.links[req.Key()][page]
	if !ok {
		return "", search.NewError(search.KindNotFound, "onedrive search", fmt.Errorf("page %d of %s: %w", page, req, search.ErrUnknownPage))
	}
	return link, nil
}

func (c *Client) rememberLink(req search.Request, page int, link string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pages, ok := c.links[req.Key()]
	if !ok {
		pages = make(map[int]string)
		c.links[req.Key()] = pages
	}
	pages[page] = link
}

func (c *Client) toItem(di models.DriveItemable) model.Item {
	it := model.Item{
		AccountID: c.user.Email,
		Provider:  model.ProviderMicrosoft,
		ID:        deref(di.GetId()),
		Name:      deref(di.GetName()),
		IsFolder:  di.GetFolder() != nil,
		Shared:    di.GetShared() != nil || di.GetRemoteItem() != nil,
	}
	if size := di.GetSize(); size != nil {
		it.Size = *size
	}
	if mod := di.GetLastModifiedDateTime(); mod != nil {
		it.ModTime = *mod
	}
	if f := di.GetFile(); f != nil {
		it.MimeType = deref(f.GetMimeType())
	}
	if parent := di.GetParentReference(); parent != nil {
		it.ParentID = deref(parent.GetId())
		it.Path = deref(parent.GetPath())
	}
	return it
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// throttleCodes are Graph error codes worth retrying.
var throttleCodes = map[string]bool{
	"activityLimitReached": true,
	"throttled":            true,
	"serviceNotAvailable":  true,
	"resourceLocked":       true,
}

// classifyError interprets OData errors from the Graph API.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	var odataErr *odataerrors.ODataError
	if errors.As(err, &odataErr) {
		kind := search.KindForStatus(odataErr.GetStatusCode())
		code, message := "unknown", "no message"
		if main := odataErr.GetErrorEscaped(); main != nil {
			code = deref(main.GetCode())
			message = deref(main.GetMessage())
		}
		if throttleCodes[code] {
			kind = search.KindServer
		}
		return search.NewError(kind, op, fmt.Errorf("graph API error: %s - %s: %w", code, message, err))
	}
	return search.NewError(search.ClassifyError(err), op, err)
}
