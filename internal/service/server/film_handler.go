package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Agurato/filmbase/internal/model"
)

// reportTimeFormat is the timestamp format in report file names
const reportTimeFormat = "2006-01-02T15-04-05"

type FilmManager interface {
	CreateFilm(ctx context.Context, film model.Film) (*model.Film, error)
	GetFilm(ctx context.Context, id int64) (*model.Film, error)
	UpdateFilm(ctx context.Context, id int64, film model.Film) (*model.Film, error)
	DeleteFilm(ctx context.Context, id int64) error

	ListFilms(ctx context.Context, filters model.Filters) (*model.FilmListResponse, error)
	WriteReport(ctx context.Context, w io.Writer, filters model.Filters) error
	ImportFilms(ctx context.Context, uploads []model.FilmUpload) model.ImportSummary
}

type FilmHandler struct {
	FilmManager
	maxUploadSize int64
}

// NewFilmHandler creates a film handler. Uploaded files larger than maxUploadSize bytes are rejected.
func NewFilmHandler(fm FilmManager, maxUploadSize int64) *FilmHandler {
	return &FilmHandler{
		FilmManager:   fm,
		maxUploadSize: maxUploadSize,
	}
}

// POSTFilm creates a film
func (fh FilmHandler) POSTFilm(c *gin.Context) {
	var film model.Film
	if !bindJSON(c, &film) {
		return
	}
	created, err := fh.FilmManager.CreateFilm(c.Request.Context(), film)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("Location", "/api/films/"+url.PathEscape(created.Title))
	c.JSON(http.StatusCreated, created)
}

// GETFilm returns a film with its director
func (fh FilmHandler) GETFilm(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	film, err := fh.FilmManager.GetFilm(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, film)
}

// PUTFilm replaces a film
func (fh FilmHandler) PUTFilm(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var film model.Film
	if !bindJSON(c, &film) {
		return
	}
	updated, err := fh.FilmManager.UpdateFilm(c.Request.Context(), id, film)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETEFilm deletes a film
func (fh FilmHandler) DELETEFilm(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := fh.FilmManager.DeleteFilm(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.String(http.StatusOK, "Deleted: %d", id)
}

// POSTFilmList returns a page of shortened films matching the filters in the body
func (fh FilmHandler) POSTFilmList(c *gin.Context) {
	filters, ok := bindFilters(c)
	if !ok {
		return
	}
	films, err := fh.FilmManager.ListFilms(c.Request.Context(), filters)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, films)
}

// POSTFilmReport streams a CSV report of the films matching the filters in the body
func (fh FilmHandler) POSTFilmReport(c *gin.Context) {
	filters, ok := bindFilters(c)
	if !ok {
		return
	}
	filename := fmt.Sprintf("filmReport_%s.csv", time.Now().Format(reportTimeFormat))
	c.Header("Content-Type", "text/csv; charset=UTF-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	if err := fh.FilmManager.WriteReport(c.Request.Context(), c.Writer, filters); err != nil {
		// The status is already sent
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Could not write film report")
		c.Abort()
	}
}

// POSTFilmUpload imports the films of the JSON array in the uploaded file
func (fh FilmHandler) POSTFilmUpload(c *gin.Context) {
	if fh.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, fh.maxUploadSize)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("Uploaded file too large")
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		abortWithError(c, fmt.Errorf("%w: missing file: %w", model.ErrMalformedInput, err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, fmt.Errorf("could not open uploaded file: %w", err))
		return
	}
	defer file.Close()

	var uploads []model.FilmUpload
	if err := json.NewDecoder(file).Decode(&uploads); err != nil {
		abortWithError(c, fmt.Errorf("%w: %w", model.ErrMalformedInput, err))
		return
	}
	summary := fh.FilmManager.ImportFilms(c.Request.Context(), uploads)
	c.JSON(http.StatusOK, summary.Response())
}

// bindFilters decodes the filters of the request body. An empty body means no filter.
func bindFilters(c *gin.Context) (model.Filters, bool) {
	var filters model.Filters
	if c.Request.ContentLength == 0 {
		return filters, true
	}
	return filters, bindJSON(c, &filters)
}
