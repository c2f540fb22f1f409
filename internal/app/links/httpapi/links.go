package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"linkapi.local/internal/app/links"
	"linkapi.local/internal/platform/metrics"
)

// This package is transport only: handlers translate HTTP to service
// calls and service outcomes back to status codes and {detail} bodies.
// Token rules, pagination math and storage live below in
// internal/app/links.

type CreateLinkRequest struct {
	OriginalURL string `json:"original_url"`
	ShortName   string `json:"short_name"`
}

// UpdateLinkRequest is the partial-update payload: a nil pointer means
// the field was absent from the body and must stay untouched.
type UpdateLinkRequest struct {
	OriginalURL *string `json:"original_url"`
	ShortName   *string `json:"short_name"`
}

type LinkResponse struct {
	ID          int64     `json:"id"`
	OriginalURL string    `json:"original_url"`
	ShortName   string    `json:"short_name"`
	ShortURL    string    `json:"short_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func toLinkResponse(svc *links.Service, link links.Link) LinkResponse {
	return LinkResponse{
		ID:          link.ID,
		OriginalURL: link.OriginalURL,
		ShortName:   link.ShortName,
		ShortURL:    svc.ShortURL(link.ShortName),
		CreatedAt:   link.CreatedAt,
	}
}

func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// abortDomainError maps a service error onto the error taxonomy:
// validation → 422, duplicate → 409, not-found → 404, everything
// else → generic 500 with the real cause going to the log only.
// Handlers that know which identifier was asked for map not-found
// themselves so the detail can name it; this keeps a generic 404 as
// the fallback.
func abortDomainError(c *gin.Context, err error) {
	var (
		valErr *links.ValidationError
		dupErr *links.DuplicateShortNameError
	)
	switch {
	case errors.As(err, &valErr):
		abortDetail(c, http.StatusUnprocessableEntity, valErr.Detail)
	case errors.As(err, &dupErr):
		abortDetail(c, http.StatusConflict, dupErr.Error())
	case errors.Is(err, links.ErrLinkNotFound):
		abortDetail(c, http.StatusNotFound, "link not found")
	default:
		slog.Error("link request failed", "err", err, "path", c.Request.URL.Path)
		abortDetail(c, http.StatusInternalServerError, "internal server error")
	}
}

func abortLinkNotFound(c *gin.Context, id int64) {
	abortDetail(c, http.StatusNotFound, fmt.Sprintf("link %d not found", id))
}

// linkID parses the :id path segment. A value that cannot be an id
// cannot name an existing row, so it reports 404 rather than a
// validation error; the detail echoes the raw segment.
func linkID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		abortDetail(c, http.StatusNotFound, fmt.Sprintf("link %s not found", raw))
		return 0, false
	}
	return id, true
}

func NewCreateHandler(svc *links.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortDetail(c, http.StatusUnprocessableEntity, "invalid request body")
			return
		}

		link, err := svc.Create(c.Request.Context(), req.OriginalURL, req.ShortName)
		if err != nil {
			abortDomainError(c, err)
			return
		}

		metrics.LinksCreated.Inc()
		c.JSON(http.StatusCreated, toLinkResponse(svc, link))
	}
}

func NewListHandler(svc *links.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rng *links.PageRange
		if raw := c.Query("range"); raw != "" {
			parsed, err := links.ParsePageRange(raw)
			if err != nil {
				var valErr *links.ValidationError
				if errors.As(err, &valErr) {
					abortDetail(c, http.StatusBadRequest, valErr.Detail)
					return
				}
				abortDomainError(c, err)
				return
			}
			rng = &parsed
		}

		page, err := svc.List(c.Request.Context(), rng)
		if err != nil {
			abortDomainError(c, err)
			return
		}

		items := make([]LinkResponse, 0, len(page.Items))
		for _, link := range page.Items {
			items = append(items, toLinkResponse(svc, link))
		}

		c.Header("Content-Range", "links "+page.ContentRange())
		c.JSON(http.StatusOK, items)
	}
}

func NewGetHandler(svc *links.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := linkID(c)
		if !ok {
			return
		}
		link, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, links.ErrLinkNotFound) {
				abortLinkNotFound(c, id)
				return
			}
			abortDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, toLinkResponse(svc, link))
	}
}

func NewUpdateHandler(svc *links.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := linkID(c)
		if !ok {
			return
		}
		var req UpdateLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortDetail(c, http.StatusUnprocessableEntity, "invalid request body")
			return
		}

		link, err := svc.Update(c.Request.Context(), id, req.OriginalURL, req.ShortName)
		if err != nil {
			if errors.Is(err, links.ErrLinkNotFound) {
				abortLinkNotFound(c, id)
				return
			}
			abortDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, toLinkResponse(svc, link))
	}
}

func NewDeleteHandler(svc *links.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := linkID(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, links.ErrLinkNotFound) {
				abortLinkNotFound(c, id)
				return
			}
			abortDomainError(c, err)
			return
		}
		metrics.LinksDeleted.Inc()
		c.Status(http.StatusNoContent)
	}
}

func NewRedirectHandler(svc *links.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shortName := c.Param("short_name")
		destination, err := svc.Resolve(c.Request.Context(), shortName)
		if err != nil {
			if errors.Is(err, links.ErrLinkNotFound) {
				abortDetail(c, http.StatusNotFound, fmt.Sprintf("short link %q not found", shortName))
				return
			}
			abortDomainError(c, err)
			return
		}

		metrics.LinkRedirects.Inc()
		c.Redirect(http.StatusMovedPermanently, destination)
	}
}
