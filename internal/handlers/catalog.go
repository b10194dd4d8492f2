package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/netflox-api/internal/logger"
	"github.com/sbilibin2017/netflox-api/internal/models"
	"github.com/sbilibin2017/netflox-api/internal/services"
)

//go:generate mockgen -source=catalog.go -destination=catalog_mock.go -package=handlers

// CatalogBrowser defines the catalog operations served over HTTP.
type CatalogBrowser interface {
	Sections() []models.Section
	Section(ctx context.Context, key string) (*models.CatalogPage, error)
	Search(ctx context.Context, query string) (*models.CatalogPage, error)
	Trailer(ctx context.Context, mediaType string, id int64) (*models.Video, error)
}

// NewSectionsHandler lists the catalog sections.
// @Summary Catalog sections
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Section
// @Router /catalog/sections [get]
func NewSectionsHandler(svc CatalogBrowser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Sections())
	}
}

// NewSectionHandler returns the titles of one section.
// @Summary Section titles
// @Tags catalog
// @Produce json
// @Param key path string true "Section key" example(trending)
// @Success 200 {object} models.CatalogPage
// @Failure 404 {object} models.ErrorResponse "Section not found"
// @Failure 502 {object} models.ErrorResponse "Catalog unavailable"
// @Router /catalog/sections/{key} [get]
func NewSectionHandler(svc CatalogBrowser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.Section(r.Context(), chi.URLParam(r, "key"))
		if err != nil {
			writeCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// NewSearchHandler searches movies and TV shows.
// @Summary Search titles
// @Description Queries shorter than three characters return no results
// @Tags catalog
// @Produce json
// @Param q query string true "Search text"
// @Success 200 {object} models.CatalogPage
// @Failure 502 {object} models.ErrorResponse "Catalog unavailable"
// @Router /catalog/search [get]
func NewSearchHandler(svc CatalogBrowser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.Search(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			writeCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// NewTrailerHandler returns the trailer of a title.
// @Summary Title trailer
// @Tags catalog
// @Produce json
// @Param id path int true "Title id"
// @Param media_type query string false "movie or tv"
// @Success 200 {object} models.Video
// @Failure 400 {object} models.ErrorResponse "Invalid title id or media type"
// @Failure 404 {object} models.ErrorResponse "Trailer not found"
// @Failure 502 {object} models.ErrorResponse "Catalog unavailable"
// @Router /catalog/titles/{id}/trailer [get]
func NewTrailerHandler(svc CatalogBrowser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid title id")
			return
		}

		video, err := svc.Trailer(r.Context(), r.URL.Query().Get("media_type"), id)
		if err != nil {
			writeCatalogError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, video)
	}
}

func writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrSectionNotFound):
		writeError(w, http.StatusNotFound, "Section not found")
	case errors.Is(err, services.ErrTrailerNotFound):
		writeError(w, http.StatusNotFound, "Trailer not found")
	case errors.Is(err, services.ErrInvalidMediaType):
		writeError(w, http.StatusBadRequest, "media_type must be movie or tv")
	case errors.Is(err, services.ErrCatalogUnavailable):
		logger.Log.Warnw("catalog upstream failed", requestFields(r, "err", err)...)
		writeError(w, http.StatusBadGateway, "Catalog unavailable")
	default:
		logger.Log.Errorw("catalog request failed", requestFields(r, "err", err)...)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

// RegisterCatalogHandlers registers the catalog routes
func RegisterCatalogHandlers(r chi.Router, svc CatalogBrowser) {
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/sections", NewSectionsHandler(svc))
		r.Get("/sections/{key}", NewSectionHandler(svc))
		r.Get("/search", NewSearchHandler(svc))
		r.Get("/titles/{id}/trailer", NewTrailerHandler(svc))
	})
}
