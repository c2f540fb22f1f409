package repo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"linkapi.local/internal/app/links"
	"linkapi.local/internal/app/links/cache"
)

const uniqueViolation = "23505"

// LinksRepo is the pgx-backed links.Store. The unique index on
// short_name is the single source of truth for uniqueness: inserts and
// updates run unconditionally and the constraint violation is
// interpreted after the fact, so there is no check-then-insert window.
//
// cache and bloom are optional; a nil cache turns every lookup into a
// plain query.
type LinksRepo struct {
	db    *pgxpool.Pool
	cache *cache.LinkCache
	bloom *cache.BloomFilter
}

func NewLinksRepo(db *pgxpool.Pool, c *cache.LinkCache, bf *cache.BloomFilter) *LinksRepo {
	return &LinksRepo{db: db, cache: c, bloom: bf}
}

func (r *LinksRepo) Create(ctx context.Context, originalURL, shortName string) (links.Link, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	link := links.Link{OriginalURL: originalURL, ShortName: shortName}
	err := r.db.
		QueryRow(dbctx,
			"INSERT INTO links (original_url, short_name) VALUES ($1, $2) RETURNING id, created_at",
			originalURL, shortName).
		Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return links.Link{}, &links.DuplicateShortNameError{ShortName: shortName}
		}
		slog.Error(err.Error())
		return links.Link{}, err
	}

	if r.bloom != nil {
		r.bloom.Add(shortName)
	}
	r.cacheSet(ctx, link)

	return link, nil
}

func (r *LinksRepo) Get(ctx context.Context, id int64) (links.Link, error) {
	dbctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	var link links.Link
	err := r.db.
		QueryRow(dbctx, "SELECT id, original_url, short_name, created_at FROM links WHERE id=$1", id).
		Scan(&link.ID, &link.OriginalURL, &link.ShortName, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return links.Link{}, links.ErrLinkNotFound
		}
		slog.Error(err.Error())
		return links.Link{}, err
	}
	return link, nil
}

// GetByShortName powers the redirect hot path: bloom filter first, then
// the two cache levels, then the table. Misses are negative-cached.
func (r *LinksRepo) GetByShortName(ctx context.Context, shortName string) (links.Link, error) {
	if r.bloom != nil && !r.bloom.MightExist(shortName) {
		return links.Link{}, links.ErrLinkNotFound
	}

	if r.cache != nil {
		if payload, _ := r.cache.Get(ctx, shortName); payload != "" {
			if payload == cache.NotFoundSentinel {
				return links.Link{}, links.ErrLinkNotFound
			}
			var link links.Link
			if err := json.Unmarshal([]byte(payload), &link); err == nil {
				return link, nil
			}
			// Unreadable entry: fall through to the table and rewrite it.
		}
	}

	dbctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	var link links.Link
	err := r.db.
		QueryRow(dbctx, "SELECT id, original_url, short_name, created_at FROM links WHERE short_name=$1", shortName).
		Scan(&link.ID, &link.OriginalURL, &link.ShortName, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if r.cache != nil {
				_ = r.cache.SetNotFound(ctx, shortName)
			}
			return links.Link{}, links.ErrLinkNotFound
		}
		slog.Error(err.Error())
		return links.Link{}, err
	}

	r.cacheSet(ctx, link)
	return link, nil
}

func (r *LinksRepo) List(ctx context.Context, offset, limit int64) ([]links.Link, int64, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var total int64
	if err := r.db.QueryRow(dbctx, "SELECT COUNT(*) FROM links").Scan(&total); err != nil {
		slog.Error(err.Error())
		return nil, 0, err
	}

	var (
		rows pgx.Rows
		err  error
	)
	if limit < 0 {
		rows, err = r.db.Query(dbctx,
			"SELECT id, original_url, short_name, created_at FROM links ORDER BY id ASC OFFSET $1", offset)
	} else {
		rows, err = r.db.Query(dbctx,
			"SELECT id, original_url, short_name, created_at FROM links ORDER BY id ASC OFFSET $1 LIMIT $2", offset, limit)
	}
	if err != nil {
		slog.Error(err.Error())
		return nil, 0, err
	}
	defer rows.Close()

	var result []links.Link
	for rows.Next() {
		var link links.Link
		if err := rows.Scan(&link.ID, &link.OriginalURL, &link.ShortName, &link.CreatedAt); err != nil {
			slog.Error(err.Error())
			return nil, 0, err
		}
		result = append(result, link)
	}
	if err := rows.Err(); err != nil {
		slog.Error(err.Error())
		return nil, 0, err
	}
	return result, total, nil
}

func (r *LinksRepo) Update(ctx context.Context, id int64, upd links.Update) (links.Link, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.db.Begin(dbctx)
	if err != nil {
		slog.Error(err.Error())
		return links.Link{}, err
	}
	defer tx.Rollback(dbctx)

	// Lock the row and remember the current short name so the cache
	// entry under the old token can be dropped after commit.
	var oldShortName string
	err = tx.QueryRow(dbctx, "SELECT short_name FROM links WHERE id=$1 FOR UPDATE", id).Scan(&oldShortName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return links.Link{}, links.ErrLinkNotFound
		}
		slog.Error(err.Error())
		return links.Link{}, err
	}

	// COALESCE keeps unset fields exactly as they are; created_at is
	// never in the SET list.
	var link links.Link
	err = tx.
		QueryRow(dbctx, `
UPDATE links
SET original_url = COALESCE($2, original_url),
    short_name   = COALESCE($3, short_name)
WHERE id = $1
RETURNING id, original_url, short_name, created_at`,
			id, upd.OriginalURL, upd.ShortName).
		Scan(&link.ID, &link.OriginalURL, &link.ShortName, &link.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return links.Link{}, &links.DuplicateShortNameError{ShortName: *upd.ShortName}
		}
		slog.Error(err.Error())
		return links.Link{}, err
	}

	if err := tx.Commit(dbctx); err != nil {
		slog.Error(err.Error())
		return links.Link{}, err
	}

	if r.cache != nil && oldShortName != link.ShortName {
		_ = r.cache.Delete(ctx, oldShortName)
	}
	if r.bloom != nil {
		r.bloom.Add(link.ShortName)
	}
	r.cacheSet(ctx, link)

	return link, nil
}

func (r *LinksRepo) Delete(ctx context.Context, id int64) error {
	dbctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	var shortName string
	err := r.db.
		QueryRow(dbctx, "DELETE FROM links WHERE id=$1 RETURNING short_name", id).
		Scan(&shortName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return links.ErrLinkNotFound
		}
		slog.Error(err.Error())
		return err
	}

	if r.cache != nil {
		_ = r.cache.Delete(ctx, shortName)
	}
	return nil
}

// ShortNames returns every stored short name; used to warm the bloom
// filter at startup.
func (r *LinksRepo) ShortNames(ctx context.Context) ([]string, error) {
	dbctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := r.db.Query(dbctx, "SELECT short_name FROM links")
	if err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			slog.Error(err.Error())
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	return names, nil
}

// cacheSet writes a link under its short name with a small budget so a
// slow cache never holds up the request that produced the row.
func (r *LinksRepo) cacheSet(ctx context.Context, link links.Link) {
	if r.cache == nil {
		return
	}
	payload, err := json.Marshal(link)
	if err != nil {
		return
	}
	cacheCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_ = r.cache.Set(cacheCtx, link.ShortName, string(payload))
}
