package models

// Title is a movie or TV entry from the catalog.
// swagger:model Title
type Title struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	OriginalName string  `json:"original_name,omitempty"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	MediaType    string  `json:"media_type,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
}

// CatalogPage is one page of titles.
// swagger:model CatalogPage
type CatalogPage struct {
	Results []Title `json:"results"`
}

// Section is a named row of the catalog home page.
// swagger:model Section
type Section struct {
	Key   string `json:"key"`
	Title string `json:"title"`

	Path   string            `json:"-"`
	Params map[string]string `json:"-"`
}

// Video is a clip attached to a title.
// swagger:model Video
type Video struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}
