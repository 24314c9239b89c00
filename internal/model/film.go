package model

// FilmEntity is a film as it is persisted.
// Multi-valued fields are stored as a single string joined with ValueSeparator.
type FilmEntity struct {
	ID          int64  `bson:"_id" db:"id"`
	Title       string `bson:"title" db:"title"`
	Year        *int   `bson:"year" db:"year"`
	DirectorID  int64  `bson:"director_id" db:"director_id"`
	WrittenBy   string `bson:"written_by" db:"written_by"`
	ProducedBy  string `bson:"produced_by" db:"produced_by"`
	Starring    string `bson:"starring" db:"starring"`
	RunningTime *int   `bson:"running_time" db:"running_time"`
	Genres      string `bson:"genres" db:"genres"`
}

// Film is the API representation of a film
type Film struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title" binding:"required,notblank,max=128"`
	Year        *int      `json:"year"`
	DirectedBy  *Director `json:"directed by,omitempty" binding:"required"`
	WrittenBy   []string  `json:"written by"`
	ProducedBy  []string  `json:"produced by"`
	Starring    []string  `json:"starring"`
	RunningTime *int      `json:"running time"`
	Genres      []string  `json:"genres"`
}

// FilmListItem is the shortened film projection used by listings and reports
type FilmListItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Year        *int   `json:"year"`
	DirectedBy  string `json:"directed by"`
	RunningTime *int   `json:"running time"`
}

// FilmListResponse holds one page of shortened films and the number of pages matching the filters
type FilmListResponse struct {
	Films      []FilmListItem `json:"films"`
	TotalPages int            `json:"totalPages"`
}
