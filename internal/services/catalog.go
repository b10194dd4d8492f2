package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sbilibin2017/netflox-api/internal/facades"
	"github.com/sbilibin2017/netflox-api/internal/logger"
	"github.com/sbilibin2017/netflox-api/internal/models"
)

//go:generate mockgen -source=catalog.go -destination=catalog_mock.go -package=services

// MinSearchLength is the shortest query sent upstream; shorter queries match nothing.
const MinSearchLength = 3

var (
	ErrSectionNotFound    = errors.New("catalog section not found")
	ErrTrailerNotFound    = errors.New("trailer not found")
	ErrInvalidMediaType   = errors.New("media type must be movie or tv")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// DefaultSections are the rows of the catalog home page.
var DefaultSections = []models.Section{
	{Key: "trending", Title: "Trending Now", Path: "/trending/all/week", Params: map[string]string{"language": "en-US"}},
	{Key: "originals", Title: "Netflix Originals", Path: "/discover/tv", Params: map[string]string{"with_networks": "213"}},
	{Key: "top_rated", Title: "Top Rated", Path: "/movie/top_rated", Params: map[string]string{"language": "en-US"}},
	{Key: "action", Title: "Action Movies", Path: "/discover/movie", Params: map[string]string{"with_genres": "28"}},
	{Key: "comedy", Title: "Comedy Movies", Path: "/discover/movie", Params: map[string]string{"with_genres": "35"}},
	{Key: "horror", Title: "Horror Movies", Path: "/discover/movie", Params: map[string]string{"with_genres": "27"}},
	{Key: "romance", Title: "Romance Movies", Path: "/discover/movie", Params: map[string]string{"with_genres": "10749"}},
	{Key: "documentaries", Title: "Documentaries", Path: "/discover/movie", Params: map[string]string{"with_genres": "99"}},
}

// CatalogSource reads the upstream catalog.
type CatalogSource interface {
	GetPage(ctx context.Context, path string, params map[string]string) (*models.CatalogPage, error)
	GetVideos(ctx context.Context, mediaType string, id int64) ([]models.Video, error)
}

// CatalogCache caches catalog responses. Getters return nil on a miss.
type CatalogCache interface {
	GetPage(ctx context.Context, key string) (*models.CatalogPage, error)
	SetPage(ctx context.Context, key string, page *models.CatalogPage) error
	GetVideo(ctx context.Context, key string) (*models.Video, error)
	SetVideo(ctx context.Context, key string, video *models.Video) error
}

// CatalogService serves catalog sections, search and trailers with an optional cache.
type CatalogService struct {
	source   CatalogSource
	cache    CatalogCache
	sections []models.Section
	byKey    map[string]models.Section
}

// NewCatalogService creates the service. cache may be nil.
func NewCatalogService(source CatalogSource, cache CatalogCache) *CatalogService {
	svc := &CatalogService{
		source:   source,
		cache:    cache,
		sections: DefaultSections,
		byKey:    make(map[string]models.Section, len(DefaultSections)),
	}
	for _, s := range DefaultSections {
		svc.byKey[s.Key] = s
	}
	return svc
}

// Sections lists the available sections in display order.
func (svc *CatalogService) Sections() []models.Section {
	return svc.sections
}

// Section returns the titles of one section.
func (svc *CatalogService) Section(ctx context.Context, key string) (*models.CatalogPage, error) {
	section, ok := svc.byKey[key]
	if !ok {
		return nil, ErrSectionNotFound
	}
	return svc.page(ctx, "section:"+key, section.Path, section.Params)
}

// Search looks titles up across movies and TV.
func (svc *CatalogService) Search(ctx context.Context, query string) (*models.CatalogPage, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchLength {
		return &models.CatalogPage{Results: []models.Title{}}, nil
	}
	return svc.page(ctx, "search:"+strings.ToLower(query), "/search/multi", map[string]string{"query": query})
}

// Trailer returns the first YouTube trailer of a title, else its first video.
// An empty mediaType tries movie first, then tv.
func (svc *CatalogService) Trailer(ctx context.Context, mediaType string, id int64) (*models.Video, error) {
	var mediaTypes []string
	switch mediaType {
	case "":
		mediaTypes = []string{"movie", "tv"}
	case "movie", "tv":
		mediaTypes = []string{mediaType}
	default:
		return nil, ErrInvalidMediaType
	}

	var lastErr error
	for _, mt := range mediaTypes {
		key := "trailer:" + mt + ":" + strconv.FormatInt(id, 10)
		if video := svc.cachedVideo(ctx, key); video != nil {
			return video, nil
		}

		videos, err := svc.source.GetVideos(ctx, mt, id)
		if err != nil {
			if !errors.Is(err, facades.ErrNotFound) {
				lastErr = err
			}
			continue
		}

		if video := pickTrailer(videos); video != nil {
			svc.storeVideo(ctx, key, video)
			return video, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, lastErr)
	}
	return nil, ErrTrailerNotFound
}

func pickTrailer(videos []models.Video) *models.Video {
	for i := range videos {
		if videos[i].Type == "Trailer" && videos[i].Site == "YouTube" && videos[i].Key != "" {
			return &videos[i]
		}
	}
	if len(videos) > 0 && videos[0].Key != "" {
		return &videos[0]
	}
	return nil
}

func (svc *CatalogService) page(ctx context.Context, key, path string, params map[string]string) (*models.CatalogPage, error) {
	if svc.cache != nil {
		page, err := svc.cache.GetPage(ctx, key)
		if err != nil {
			logger.Log.Warnw("catalog cache unavailable, reading upstream", "key", key, "error", err)
		}
		if page != nil {
			return page, nil
		}
	}

	page, err := svc.source.GetPage(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	if svc.cache != nil {
		if err := svc.cache.SetPage(ctx, key, page); err != nil {
			logger.Log.Warnw("failed to cache catalog page", "key", key, "error", err)
		}
	}
	return page, nil
}

func (svc *CatalogService) cachedVideo(ctx context.Context, key string) *models.Video {
	if svc.cache == nil {
		return nil
	}
	video, err := svc.cache.GetVideo(ctx, key)
	if err != nil {
		logger.Log.Warnw("catalog cache unavailable, reading upstream", "key", key, "error", err)
		return nil
	}
	return video
}

func (svc *CatalogService) storeVideo(ctx context.Context, key string, video *models.Video) {
	if svc.cache == nil {
		return
	}
	if err := svc.cache.SetVideo(ctx, key, video); err != nil {
		logger.Log.Warnw("failed to cache trailer", "key", key, "error", err)
	}
}
