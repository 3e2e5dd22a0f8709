package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/FranLegon/cloud-drives-search/internal/auth"
	"github.com/FranLegon/cloud-drives-search/internal/logger"
	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/FranLegon/cloud-drives-search/internal/search"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	listFields     = "nextPageToken, files(id, name, mimeType, size, modifiedTime, parents, starred, shared)"
)

// Options tune the Drive fetcher.
type Options struct {
	PageSize   int
	RecentDays int
}

func (o Options) withDefaults() Options {
	if o.PageSize < 1 {
		o.PageSize = 50
	}
	if o.RecentDays < 1 {
		o.RecentDays = 7
	}
	return o
}

// Client answers remote searches from Google Drive. Drive hands out opaque
// page tokens; the client maps them to page numbers per request.
type Client struct {
	service *drive.Service
	user    model.User
	opts    Options
	now     func() time.Time

	mu     sync.Mutex
	tokens map[string]map[int]string
}

// NewClient creates a Drive client whose HTTP calls are retried on
// transient failures.
func NewClient(ctx context.Context, user model.User, config *oauth2.Config, opts Options) (*Client, error) {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = retryLogger{tags: []string{"Google", user.Email}}
	// Hand the last response to the Drive library so it can decode the
	// API error.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: auth.TokenSource(ctx, config, user.RefreshToken),
			Base:   retryClient.StandardClient().Transport,
		},
	}

	service, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return newClient(service, user, opts), nil
}

func newClient(service *drive.Service, user model.User, opts Options) *Client {
	return &Client{
		service: service,
		user:    user,
		opts:    opts.withDefaults(),
		now:     time.Now,
		tokens:  make(map[string]map[int]string),
	}
}

// Email returns the address of the authorized account.
func (c *Client) Email(ctx context.Context) (string, error) {
	about, err := c.service.About.Get().Fields("user(emailAddress)").Context(ctx).Do()
	if err != nil {
		return "", classifyError("get account", err)
	}
	if about.User == nil || about.User.EmailAddress == "" {
		return "", errors.New("drive did not report an email address")
	}
	return about.User.EmailAddress, nil
}

// Fetch lists one page of results for req.
func (c *Client) Fetch(ctx context.Context, req search.Request, page int) (search.ResultPage, error) {
	if !req.Type.Remote() {
		return search.ResultPage{}, search.Unsupported("drive search", req.Type)
	}

	pageToken, err := c.pageToken(req, page)
	if err != nil {
		return search.ResultPage{}, err
	}

	call := c.service.Files.List().
		Q(buildQuery(req, c.now(), c.opts.RecentDays)).
		Fields(listFields).
		PageSize(int64(c.opts.PageSize)).
		OrderBy(orderFor(req.Type)).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	logger.DebugTagged([]string{"Google", c.user.Email}, "Listing page %d of %s", page, req)
	list, err := call.Do()
	if err != nil {
		return search.ResultPage{}, classifyError("list files", err)
	}

	items := make([]model.Item, 0, len(list.Files))
	for _, f := range list.Files {
		items = append(items, c.toItem(f))
	}

	result := search.ResultPage{Items: items, NextPageToken: search.PageEnd}
	if list.NextPageToken != "" {
		result.NextPageToken = page + 1
		c.rememberToken(req, page+1, list.NextPageToken)
	}
	return result, nil
}

func (c *Client) pageToken(req search.Request, page int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if page == search.FirstPage {
		delete(c.tokens, req.Key())
		return "", nil
	}
	token, ok := c.tokens[req.Key()][page]
	if !ok {
		return "", search.NewError(search.KindNotFound, "drive search", fmt.Errorf("page %d of %s: %w", page, req, search.ErrUnknownPage))
	}
	return token, nil
}

func (c *Client) rememberToken(req search.Request, page int, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pages, ok := c.tokens[req.Key()]
	if !ok {
		pages = make(map[int]string)
		c.tokens[req.Key()] = pages
	}
	pages[page] = token
}

func (c *Client) toItem(f *drive.File) model.Item {
	it := model.Item{
		ID:        f.Id,
		AccountID: c.user.Email,
		Provider:  model.ProviderGoogle,
		Name:      f.Name,
		MimeType:  f.MimeType,
		Size:      f.Size,
		ModTime:   parseTime(f.ModifiedTime),
		IsFolder:  f.MimeType == folderMimeType,
		Starred:   f.Starred,
		Shared:    f.Shared,
	}
	if len(f.Parents) > 0 {
		it.ParentID = f.Parents[0]
	}
	return it
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// buildQuery translates a request into a Drive query expression.
func buildQuery(req search.Request, now time.Time, recentDays int) string {
	parts := []string{"trashed = false"}
	text := strings.TrimSpace(req.Query)

	switch req.Type {
	case search.NoSearch:
		parent := text
		if parent == "" {
			parent = "root"
		}
		parts = append(parts, fmt.Sprintf("'%s' in parents", quoteEscaper.Replace(parent)))
		text = ""
	case search.FavoriteSearch:
		parts = append(parts, "starred = true")
	case search.RecentlyModifiedSearch:
		since := now.AddDate(0, 0, -recentDays).UTC().Format(time.RFC3339)
		parts = append(parts, fmt.Sprintf("modifiedTime > '%s'", since))
	case search.SharedFilter:
		parts = append(parts, "sharedWithMe = true")
	case search.GallerySearch:
		parts = append(parts, "(mimeType contains 'image/' or mimeType contains 'video/')")
	}

	if text != "" {
		parts = append(parts, fmt.Sprintf("name contains '%s'", quoteEscaper.Replace(text)))
	}
	if req.OnlyFolders {
		parts = append(parts, fmt.Sprintf("mimeType = '%s'", folderMimeType))
	}
	return strings.Join(parts, " and ")
}

func orderFor(t search.Type) string {
	switch t {
	case search.RecentlyModifiedSearch, search.GallerySearch:
		return "modifiedTime desc"
	}
	return "folder,name"
}

// classifyError maps Drive API failures onto fetch error kinds.
func classifyError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return search.NewError(search.KindForStatus(gerr.Code), op, err)
	}
	return search.NewError(search.ClassifyError(err), op, err)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// retryLogger sends retryablehttp messages to the package logger.
type retryLogger struct {
	tags []string
}

func (l retryLogger) Error(msg string, kv ...interface{}) {
	logger.ErrorTagged(l.tags, "%s %v", msg, kv)
}

func (l retryLogger) Info(msg string, kv ...interface{}) {
	logger.DebugTagged(l.tags, "%s %v", msg, kv)
}

func (l retryLogger) Debug(msg string, kv ...interface{}) {
	logger.DebugTagged(l.tags, "%s %v", msg, kv)
}

func (l retryLogger) Warn(msg string, kv ...interface{}) {
	logger.WarningTagged(l.tags, "%s %v", msg, kv)
}
