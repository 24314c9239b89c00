package business

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/Agurato/filmbase/internal/filter"
	"github.com/Agurato/filmbase/internal/model"
)

type FilmStorer interface {
	AddFilm(ctx context.Context, film *model.FilmEntity) error
	UpdateFilm(ctx context.Context, film *model.FilmEntity) error
	DeleteFilm(ctx context.Context, id int64) error

	IsFilmPresent(ctx context.Context, id int64) (bool, error)
	IsFilmTitlePresent(ctx context.Context, title string, excludeID int64) (bool, error)

	GetFilmFromID(ctx context.Context, id int64) (*model.FilmEntity, error)
	GetFilmsWithDirector(ctx context.Context, directorID int64) ([]model.FilmEntity, error)
	GetFilmsFiltered(ctx context.Context, predicate filter.Predicate, skip, limit int64) (films []model.FilmEntity, total int64, err error)
	IterateFilmsFiltered(ctx context.Context, predicate filter.Predicate, fn func(film *model.FilmEntity) error) error
}

// FilmDirectorStorer is the director storage needed to resolve film references
type FilmDirectorStorer interface {
	GetDirectors(ctx context.Context) ([]model.DirectorEntity, error)
	GetDirectorFromID(ctx context.Context, id int64) (*model.DirectorEntity, error)
	GetDirectorFromName(ctx context.Context, name string) (*model.DirectorEntity, error)
	GetDirectorsFromIDs(ctx context.Context, ids []int64) ([]model.DirectorEntity, error)
}

type FilmManager struct {
	FilmStorer
	FilmDirectorStorer
	paginater *Paginater
}

func NewFilmManager(fs FilmStorer, fds FilmDirectorStorer, p *Paginater) *FilmManager {
	return &FilmManager{
		FilmStorer:         fs,
		FilmDirectorStorer: fds,
		paginater:          p,
	}
}

// CreateFilm persists a new film. Its director must already exist.
func (fm FilmManager) CreateFilm(ctx context.Context, film model.Film) (*model.Film, error) {
	if !ValidName(film.Title) {
		return nil, model.ErrInvalidTitle
	}
	director, err := fm.resolveDirector(ctx, film.DirectedBy)
	if err != nil {
		return nil, err
	}
	entity := FilmToEntity(film, director.ID)
	entity.ID = 0
	if err := fm.FilmStorer.AddFilm(ctx, &entity); err != nil {
		return nil, fmt.Errorf("could not add film to database: %w", err)
	}
	zerolog.Ctx(ctx).Info().Int64("filmID", entity.ID).Str("title", entity.Title).Msg("Film created")
	return fm.withDirector(ctx, &entity, director)
}

// GetFilm returns a film with its director and the director's films
func (fm FilmManager) GetFilm(ctx context.Context, id int64) (*model.Film, error) {
	film, err := fm.FilmStorer.GetFilmFromID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get film from ID '%d': %w", id, err)
	}
	director, err := fm.FilmDirectorStorer.GetDirectorFromID(ctx, film.DirectorID)
	if err != nil {
		return nil, fmt.Errorf("could not get director of film '%d': %w", id, err)
	}
	return fm.withDirector(ctx, film, director)
}

// UpdateFilm replaces every field of an existing film
func (fm FilmManager) UpdateFilm(ctx context.Context, id int64, film model.Film) (*model.Film, error) {
	if !ValidName(film.Title) {
		return nil, model.ErrInvalidTitle
	}
	present, err := fm.FilmStorer.IsFilmPresent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not check film '%d': %w", id, err)
	}
	if !present {
		return nil, model.ErrFilmNotFound
	}
	taken, err := fm.FilmStorer.IsFilmTitlePresent(ctx, film.Title, id)
	if err != nil {
		return nil, fmt.Errorf("could not check film title: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: %q", model.ErrFilmExists, film.Title)
	}
	director, err := fm.resolveDirector(ctx, film.DirectedBy)
	if err != nil {
		return nil, err
	}

	entity := FilmToEntity(film, director.ID)
	entity.ID = id
	if err := fm.FilmStorer.UpdateFilm(ctx, &entity); err != nil {
		return nil, fmt.Errorf("could not update film '%d': %w", id, err)
	}
	zerolog.Ctx(ctx).Info().Int64("filmID", id).Msg("Film updated")
	return fm.withDirector(ctx, &entity, director)
}

// DeleteFilm removes a film
func (fm FilmManager) DeleteFilm(ctx context.Context, id int64) error {
	present, err := fm.FilmStorer.IsFilmPresent(ctx, id)
	if err != nil {
		return fmt.Errorf("could not check film '%d': %w", id, err)
	}
	if !present {
		return model.ErrFilmNotFound
	}
	if err := fm.FilmStorer.DeleteFilm(ctx, id); err != nil {
		return fmt.Errorf("could not delete film '%d': %w", id, err)
	}
	zerolog.Ctx(ctx).Info().Int64("filmID", id).Msg("Film deleted")
	return nil
}

// ListFilms returns one page of shortened films matching the filters
func (fm FilmManager) ListFilms(ctx context.Context, filters model.Filters) (*model.FilmListResponse, error) {
	page := fm.paginater.GetPage(filters.Page, filters.PageSize)
	films, total, err := fm.FilmStorer.GetFilmsFiltered(ctx, filter.Build(filters), page.Skip(), page.Size)
	if err != nil {
		return nil, fmt.Errorf("could not get filtered films: %w", err)
	}

	directorIDs := lo.Uniq(lo.Map(films, func(f model.FilmEntity, _ int) int64 {
		return f.DirectorID
	}))
	directors, err := fm.FilmDirectorStorer.GetDirectorsFromIDs(ctx, directorIDs)
	if err != nil {
		return nil, fmt.Errorf("could not get directors of films: %w", err)
	}
	names := directorNames(directors)

	return &model.FilmListResponse{
		Films: lo.Map(films, func(f model.FilmEntity, _ int) model.FilmListItem {
			return FilmToListItem(&f, names[f.DirectorID])
		}),
		TotalPages: fm.paginater.GetTotalPages(page, total),
	}, nil
}

func (fm FilmManager) resolveDirector(ctx context.Context, director *model.Director) (*model.DirectorEntity, error) {
	if director == nil || strings.TrimSpace(director.Name) == "" {
		return nil, model.ErrMissingDirector
	}
	entity, err := fm.FilmDirectorStorer.GetDirectorFromName(ctx, director.Name)
	if errors.Is(err, model.ErrDirectorNotFound) {
		return nil, fmt.Errorf("%w %q", model.ErrUnknownDirector, director.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get director '%s': %w", director.Name, err)
	}
	return entity, nil
}

// withDirector builds the API film, resolving its director and the director's films
func (fm FilmManager) withDirector(ctx context.Context, film *model.FilmEntity, director *model.DirectorEntity) (*model.Film, error) {
	films, err := fm.FilmStorer.GetFilmsWithDirector(ctx, director.ID)
	if err != nil {
		return nil, fmt.Errorf("could not get films of director '%d': %w", director.ID, err)
	}
	m := FilmFromEntity(film, DirectorFromEntity(director, films))
	return &m, nil
}

func directorNames(directors []model.DirectorEntity) map[int64]string {
	return lo.Associate(directors, func(d model.DirectorEntity) (int64, string) {
		return d.ID, d.Name
	})
}
