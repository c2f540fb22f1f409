package links

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLinkNotFound is returned when no link exists for the given id or
// short name. The HTTP layer maps it to 404.
var ErrLinkNotFound = errors.New("link not found")

// DuplicateShortNameError reports a collision on the unique short-name
// constraint. The conflicting name is kept so the response can say
// which token was taken.
type DuplicateShortNameError struct {
	ShortName string
}

func (e *DuplicateShortNameError) Error() string {
	return fmt.Sprintf("short_name %q is already in use", e.ShortName)
}

// ValidationError carries one or more field-level validation messages
// joined into a single detail string.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

// Link is the sole entity of this service: a short token mapped to a
// destination URL.
//
// ShortName is always stored trimmed and lower-cased; the database
// holds a unique index on it. ID and CreatedAt are assigned by the
// store on creation and never change afterwards.
type Link struct {
	ID          int64     `json:"id"`
	OriginalURL string    `json:"original_url"`
	ShortName   string    `json:"short_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Update is a partial-update payload. A nil field means "leave the
// column untouched"; values must already be validated and normalized.
type Update struct {
	OriginalURL *string
	ShortName   *string
}

// IsEmpty reports whether the update would change nothing.
func (u Update) IsEmpty() bool {
	return u.OriginalURL == nil && u.ShortName == nil
}

// Store is the persistence capability the service runs on: a single
// table with autoincrement identity and a unique index on the
// normalized short name.
//
// Uniqueness is enforced by the storage layer itself; implementations
// must surface a constraint violation as *DuplicateShortNameError and
// never pre-check existence (check-then-insert races).
type Store interface {
	// Create persists a new link and assigns ID and CreatedAt.
	Create(ctx context.Context, originalURL, shortName string) (Link, error)

	// Get returns the link with the given id, or ErrLinkNotFound.
	Get(ctx context.Context, id int64) (Link, error)

	// GetByShortName returns the link holding the given normalized
	// short name, or ErrLinkNotFound. The match is exact: lookups run
	// against the already-normalized stored value.
	GetByShortName(ctx context.Context, shortName string) (Link, error)

	// List returns the rows in [offset, offset+limit) ordered by
	// ascending id, plus the total row count regardless of the window.
	// limit < 0 means no upper bound.
	List(ctx context.Context, offset, limit int64) ([]Link, int64, error)

	// Update applies only the fields set in upd. CreatedAt is never
	// touched. Returns ErrLinkNotFound or *DuplicateShortNameError.
	Update(ctx context.Context, id int64, upd Update) (Link, error)

	// Delete removes the link permanently. A repeat delete of the same
	// id reports ErrLinkNotFound.
	Delete(ctx context.Context, id int64) error
}
