package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/FranLegon/cloud-drives-search/internal/search"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DBFileName      = "cache.db"
	DefaultPageSize = 50
)

// DB is the on-device store of previously fetched items. It remembers the
// result list of every remote search and answers local searches itself.
// One file serves every account; use ForAccount to get a view that only
// sees one account's results.
type DB struct {
	conn     *sql.DB
	pageSize int
	account  string
}

// Open opens (creating if needed) the cache at path and ensures the schema.
func Open(path string, pageSize int) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	conn, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open cache %s: %w", path, err)
	}

	db := &DB{conn: conn, pageSize: pageSize}
	if err := db.Initialize(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return db, nil
}

// ForAccount returns a view of the cache scoped to one account. Stored
// result lists and local searches of the view only see that account's
// items. The view shares the connection of db; close db, not the view.
func (db *DB) ForAccount(account string) *DB {
	return &DB{conn: db.conn, pageSize: db.pageSize, account: account}
}

// resultKey keys a stored result list by account and request.
func (db *DB) resultKey(req search.Request) string {
	return db.account + "\x00" + req.Key()
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Initialize creates the database schema
func (db *DB) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		key TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		provider TEXT NOT NULL,
		name TEXT NOT NULL,
		path TEXT,
		parent_id TEXT,
		mime_type TEXT,
		size INTEGER NOT NULL DEFAULT 0,
		mod_time INTEGER NOT NULL DEFAULT 0,
		is_folder INTEGER NOT NULL DEFAULT 0,
		starred INTEGER NOT NULL DEFAULT 0,
		shared INTEGER NOT NULL DEFAULT 0,
		fetched_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_items_name ON items(name);
	CREATE INDEX IF NOT EXISTS idx_items_mod_time ON items(mod_time);

	CREATE TABLE IF NOT EXISTS search_results (
		request_key TEXT NOT NULL,
		position INTEGER NOT NULL,
		item_key TEXT NOT NULL,
		PRIMARY KEY (request_key, position)
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

const itemColumns = `i.id, i.account_id, i.provider, i.name, i.path, i.parent_id, i.mime_type,
	i.size, i.mod_time, i.is_folder, i.starred, i.shared`

// StorePage records a fetched remote page. Page one replaces the stored
// result list of the request; later pages extend it.
func (db *DB) StorePage(ctx context.Context, req search.Request, page int, items []model.Item) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	key := db.resultKey(req)
	if page == search.FirstPage {
		if _, err := tx.ExecContext(ctx, `DELETE FROM search_results WHERE request_key = ?`, key); err != nil {
			return fmt.Errorf("failed to clear results of %s: %w", req, err)
		}
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM search_results WHERE request_key = ?`, key,
	).Scan(&next); err != nil {
		return err
	}

	upsert, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO items (key, id, account_id, provider, name, path, parent_id, mime_type,
			size, mod_time, is_folder, starred, shared, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer upsert.Close()

	link, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO search_results (request_key, position, item_key) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer link.Close()

	now := time.Now().UnixMilli()
	for i, it := range items {
		if _, err := upsert.ExecContext(ctx,
			it.Key(), it.ID, it.AccountID, string(it.Provider), it.Name, it.Path, it.ParentID, it.MimeType,
			it.Size, toMillis(it.ModTime), it.IsFolder, it.Starred, it.Shared, now,
		); err != nil {
			return fmt.Errorf("failed to store item %s: %w", it.Name, err)
		}
		if _, err := link.ExecContext(ctx, key, next+i, it.Key()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Cached returns the stored result list of a request, in fetch order.
func (db *DB) Cached(ctx context.Context, req search.Request) ([]model.Item, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM search_results r JOIN items i ON i.key = r.item_key
		WHERE r.request_key = ?
		ORDER BY r.position`, db.resultKey(req))
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// Fetch answers local searches from the stored items with offset
// pagination.
func (db *DB) Fetch(ctx context.Context, req search.Request, page int) (search.ResultPage, error) {
	if page < search.FirstPage {
		return search.ResultPage{}, search.NewError(search.KindNotFound, "local fetch", search.ErrUnknownPage)
	}

	var (
		where []string
		args  []any
		order string
	)
	switch req.Type {
	case search.LocalSearch:
		where = append(where, `i.name LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(req.Query))
		order = `i.name COLLATE NOCASE, i.key`
	case search.RegularFilter:
		where = append(where, `i.name LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(req.Query))
		order = `i.is_folder DESC, i.name COLLATE NOCASE, i.key`
	case search.OfflineMode:
		order = `i.mod_time DESC, i.key`
	default:
		return search.ResultPage{}, search.Unsupported("local fetch", req.Type)
	}
	if req.OnlyFolders {
		where = append(where, `i.is_folder = 1`)
	}
	if db.account != "" {
		where = append(where, `i.account_id = ?`)
		args = append(args, db.account)
	}

	query := `SELECT ` + itemColumns + ` FROM items i`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY ` + order + ` LIMIT ? OFFSET ?`
	// One extra row tells whether another page exists.
	args = append(args, db.pageSize+1, (page-1)*db.pageSize)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return search.ResultPage{}, fmt.Errorf("local search failed: %w", err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return search.ResultPage{}, fmt.Errorf("local search failed: %w", err)
	}

	result := search.ResultPage{Items: items, NextPageToken: search.PageEnd}
	if len(items) > db.pageSize {
		result.Items = items[:db.pageSize]
		result.NextPageToken = page + 1
	}
	return result, nil
}

// Stats returns the number of stored items and remembered searches.
func (db *DB) Stats(ctx context.Context) (items, searches int, err error) {
	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&items); err != nil {
		return 0, 0, err
	}
	err = db.conn.QueryRowContext(ctx, `SELECT COUNT(DISTINCT request_key) FROM search_results`).Scan(&searches)
	return items, searches, err
}

// Clear removes everything from the cache.
func (db *DB) Clear(ctx context.Context) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"search_results", "items"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var (
			it                       model.Item
			provider                 string
			path, parent, mime       sql.NullString
			modTime                  int64
			isFolder, starred, share bool
		)
		if err := rows.Scan(&it.ID, &it.AccountID, &provider, &it.Name, &path, &parent, &mime,
			&it.Size, &modTime, &isFolder, &starred, &share); err != nil {
			return nil, err
		}
		it.Provider = model.Provider(provider)
		it.Path = path.String
		it.ParentID = parent.String
		it.MimeType = mime.String
		it.ModTime = fromMillis(modTime)
		it.IsFolder = isFolder
		it.Starred = starred
		it.Shared = share
		items = append(items, it)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return items, nil
}

func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(query)) + "%"
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
