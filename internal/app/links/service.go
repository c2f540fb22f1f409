package links

import (
	"context"
	"strings"
)

// Service orchestrates validation and store access and derives the
// public short URL. The base URL and the redirect path prefix are
// injected once per deployment instance, never recomputed per request.
type Service struct {
	store          Store
	baseURL        string
	redirectPrefix string
}

func NewService(store Store, baseURL, redirectPrefix string) *Service {
	return &Service{
		store:          store,
		baseURL:        strings.TrimRight(baseURL, "/"),
		redirectPrefix: "/" + strings.Trim(redirectPrefix, "/"),
	}
}

// ShortURL derives the public-facing short URL for a normalized short
// name.
func (s *Service) ShortURL(shortName string) string {
	return s.baseURL + s.redirectPrefix + "/" + shortName
}

// Create validates both fields, normalizes the short name and persists
// the link. Field errors are collected (original_url first) into a
// single ValidationError; uniqueness violations surface from the store
// as *DuplicateShortNameError.
func (s *Service) Create(ctx context.Context, originalURL, shortName string) (Link, error) {
	var problems []string
	if err := ValidateOriginalURL(originalURL); err != nil {
		problems = append(problems, err.Error())
	}
	normalized, err := NormalizeShortName(shortName)
	if err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return Link{}, &ValidationError{Detail: strings.Join(problems, "; ")}
	}
	return s.store.Create(ctx, originalURL, normalized)
}

// Get returns the link with the given id.
func (s *Service) Get(ctx context.Context, id int64) (Link, error) {
	return s.store.Get(ctx, id)
}

// List fetches one pagination window. A nil rng means "everything":
// the whole table is returned and the reported window covers it.
func (s *Service) List(ctx context.Context, rng *PageRange) (Page, error) {
	var (
		offset int64
		limit  int64 = -1
	)
	if rng != nil {
		offset = rng.Offset()
		limit = rng.Limit()
	}
	items, total, err := s.store.List(ctx, offset, limit)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Start: offset, Total: total}, nil
}

// Update applies a partial update. Supplied fields are validated with
// the same rules as Create; absent fields are left untouched. An empty
// update is a no-op read.
func (s *Service) Update(ctx context.Context, id int64, originalURL, shortName *string) (Link, error) {
	var (
		upd      Update
		problems []string
	)
	if originalURL != nil {
		if err := ValidateOriginalURL(*originalURL); err != nil {
			problems = append(problems, err.Error())
		} else {
			upd.OriginalURL = originalURL
		}
	}
	if shortName != nil {
		normalized, err := NormalizeShortName(*shortName)
		if err != nil {
			problems = append(problems, err.Error())
		} else {
			upd.ShortName = &normalized
		}
	}
	if len(problems) > 0 {
		return Link{}, &ValidationError{Detail: strings.Join(problems, "; ")}
	}
	if upd.IsEmpty() {
		return s.store.Get(ctx, id)
	}
	return s.store.Update(ctx, id, upd)
}

// Delete removes a link permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// Resolve returns the destination URL for a short token. The match is
// case-sensitive against the stored normalized value; storage
// guarantees normalized form, so no normalization happens here.
func (s *Service) Resolve(ctx context.Context, shortName string) (string, error) {
	link, err := s.store.GetByShortName(ctx, shortName)
	if err != nil {
		return "", err
	}
	return link.OriginalURL, nil
}
