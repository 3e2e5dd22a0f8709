package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/FranLegon/cloud-drives-search/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type fakeDrive struct {
	mu      sync.Mutex
	queries []string
	tokens  []string
	status  int
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.queries = append(f.queries, r.URL.Query().Get("q"))
	f.tokens = append(f.tokens, r.URL.Query().Get("pageToken"))
	status := f.status
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": status, "message": http.StatusText(status)},
		})
		return
	}

	switch r.URL.Query().Get("pageToken") {
	case "":
		json.NewEncoder(w).Encode(map[string]any{
			"nextPageToken": "opaque-2",
			"files": []map[string]any{
				{"id": "1", "name": "report.pdf", "mimeType": "application/pdf", "size": "2048",
					"modifiedTime": "2024-05-01T10:00:00Z", "parents": []string{"root"}, "starred": true},
				{"id": "2", "name": "Reports", "mimeType": folderMimeType},
			},
		})
	default:
		json.NewEncoder(w).Encode(map[string]any{
			"files": []map[string]any{{"id": "3", "name": "report-old.pdf", "mimeType": "application/pdf"}},
		})
	}
}

func newTestClient(t *testing.T, fake *fakeDrive) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	service, err := drive.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return newClient(service, model.User{Provider: model.ProviderGoogle, Email: "me@example.com"}, Options{PageSize: 2})
}

func TestFetchPagesThroughDriveTokens(t *testing.T) {
	fake := &fakeDrive{}
	c := newTestClient(t, fake)
	ctx := context.Background()
	req := search.Request{Query: "report", Type: search.FileSearch}

	first, err := c.Fetch(ctx, req, search.FirstPage)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, 2, first.NextPageToken)

	pdf := first.Items[0]
	assert.Equal(t, "report.pdf", pdf.Name)
	assert.Equal(t, int64(2048), pdf.Size)
	assert.Equal(t, "root", pdf.ParentID)
	assert.Equal(t, "me@example.com", pdf.AccountID)
	assert.True(t, pdf.Starred)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), pdf.ModTime.UTC())
	assert.True(t, first.Items[1].IsFolder)

	second, err := c.Fetch(ctx, req, 2)
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.True(t, second.End())

	assert.Equal(t, []string{"", "opaque-2"}, fake.tokens)
	assert.Contains(t, fake.queries[0], "name contains 'report'")
}

func TestFetchUnknownPage(t *testing.T) {
	c := newTestClient(t, &fakeDrive{})

	_, err := c.Fetch(context.Background(), search.Request{Query: "x", Type: search.FileSearch}, 3)
	assert.ErrorIs(t, err, search.ErrUnknownPage)
	assert.Equal(t, search.KindNotFound, search.ClassifyError(err))
}

func TestFetchRejectsLocalTypes(t *testing.T) {
	c := newTestClient(t, &fakeDrive{})

	_, err := c.Fetch(context.Background(), search.Request{Type: search.OfflineMode}, search.FirstPage)
	assert.Equal(t, search.KindUnsupported, search.ClassifyError(err))
}

func TestFetchClassifiesAPIErrors(t *testing.T) {
	tests := []struct {
		status int
		want   search.ErrorKind
	}{
		{http.StatusUnauthorized, search.KindAuth},
		{http.StatusNotFound, search.KindNotFound},
		{http.StatusServiceUnavailable, search.KindServer},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, &fakeDrive{status: tt.status})
			_, err := c.Fetch(context.Background(), search.Request{Query: "x", Type: search.FileSearch}, search.FirstPage)
			require.Error(t, err)
			assert.Equal(t, tt.want, search.ClassifyError(err))
		})
	}
}

func TestBuildQuery(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  search.Request
		want []string
	}{
		{"root listing", search.Request{Type: search.NoSearch}, []string{"'root' in parents"}},
		{"folder listing", search.Request{Type: search.NoSearch, Query: "abc"}, []string{"'abc' in parents"}},
		{"quotes escaped", search.Request{Type: search.FileSearch, Query: `it's`}, []string{`name contains 'it\'s'`}},
		{"favorites", search.Request{Type: search.FavoriteSearch}, []string{"starred = true"}},
		{"recent", search.Request{Type: search.RecentlyModifiedSearch}, []string{"modifiedTime > '2024-06-03T00:00:00Z'"}},
		{"shared", search.Request{Type: search.SharedFilter}, []string{"sharedWithMe = true"}},
		{"gallery", search.Request{Type: search.GallerySearch}, []string{"mimeType contains 'image/'", "mimeType contains 'video/'"}},
		{"folders only", search.Request{Type: search.FileSearch, Query: "a", OnlyFolders: true}, []string{"mimeType = '" + folderMimeType + "'"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := buildQuery(tt.req, now, 7)
			assert.True(t, strings.HasPrefix(q, "trashed = false"))
			for _, part := range tt.want {
				assert.Contains(t, q, part)
			}
		})
	}

	assert.NotContains(t, buildQuery(search.Request{Type: search.NoSearch, Query: "abc"}, now, 7), "name contains")
}
