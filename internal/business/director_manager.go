package business

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Agurato/filmbase/internal/model"
)

type DirectorStorer interface {
	AddDirector(ctx context.Context, director *model.DirectorEntity) error
	UpdateDirector(ctx context.Context, director *model.DirectorEntity) error
	// DeleteDirector also deletes the films of the director
	DeleteDirector(ctx context.Context, id int64) error

	IsDirectorPresent(ctx context.Context, id int64) (bool, error)
	IsDirectorNamePresent(ctx context.Context, name string) (bool, error)

	GetDirectors(ctx context.Context) ([]model.DirectorEntity, error)
	GetDirectorFromID(ctx context.Context, id int64) (*model.DirectorEntity, error)
}

// DirectorFilmStorer is the film storage needed to list the films of a director
type DirectorFilmStorer interface {
	GetFilmsWithDirector(ctx context.Context, directorID int64) ([]model.FilmEntity, error)
}

type DirectorManager struct {
	DirectorStorer
	DirectorFilmStorer
}

func NewDirectorManager(ds DirectorStorer, dfs DirectorFilmStorer) *DirectorManager {
	return &DirectorManager{
		DirectorStorer:     ds,
		DirectorFilmStorer: dfs,
	}
}

// GetDirectors returns every director with their films
func (dm DirectorManager) GetDirectors(ctx context.Context) ([]model.Director, error) {
	entities, err := dm.DirectorStorer.GetDirectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get directors: %w", err)
	}
	directors := make([]model.Director, 0, len(entities))
	for i := range entities {
		director, err := dm.withFilms(ctx, &entities[i])
		if err != nil {
			return nil, err
		}
		directors = append(directors, *director)
	}
	return directors, nil
}

// CreateDirector persists a new director. Names are unique.
func (dm DirectorManager) CreateDirector(ctx context.Context, director model.Director) (*model.Director, error) {
	if err := dm.checkName(ctx, director.Name); err != nil {
		return nil, err
	}
	entity := DirectorToEntity(director)
	entity.ID = 0
	if err := dm.DirectorStorer.AddDirector(ctx, &entity); err != nil {
		return nil, fmt.Errorf("could not add director to database: %w", err)
	}
	zerolog.Ctx(ctx).Info().Int64("directorID", entity.ID).Str("name", entity.Name).Msg("Director created")
	return DirectorFromEntity(&entity, nil), nil
}

// UpdateDirector renames a director. The new name must not be used by any director, including this one.
func (dm DirectorManager) UpdateDirector(ctx context.Context, id int64, director model.Director) (*model.Director, error) {
	if err := dm.checkName(ctx, director.Name); err != nil {
		return nil, err
	}
	present, err := dm.DirectorStorer.IsDirectorPresent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not check director '%d': %w", id, err)
	}
	if !present {
		return nil, model.ErrDirectorNotFound
	}

	entity := DirectorToEntity(director)
	entity.ID = id
	if err := dm.DirectorStorer.UpdateDirector(ctx, &entity); err != nil {
		return nil, fmt.Errorf("could not update director '%d': %w", id, err)
	}
	zerolog.Ctx(ctx).Info().Int64("directorID", id).Str("name", entity.Name).Msg("Director updated")
	return dm.withFilms(ctx, &entity)
}

// DeleteDirector removes a director and all their films
func (dm DirectorManager) DeleteDirector(ctx context.Context, id int64) error {
	present, err := dm.DirectorStorer.IsDirectorPresent(ctx, id)
	if err != nil {
		return fmt.Errorf("could not check director '%d': %w", id, err)
	}
	if !present {
		return model.ErrDirectorNotFound
	}
	if err := dm.DirectorStorer.DeleteDirector(ctx, id); err != nil {
		return fmt.Errorf("could not delete director '%d': %w", id, err)
	}
	zerolog.Ctx(ctx).Info().Int64("directorID", id).Msg("Director deleted")
	return nil
}

func (dm DirectorManager) checkName(ctx context.Context, name string) error {
	if !ValidName(name) {
		return model.ErrInvalidName
	}
	taken, err := dm.DirectorStorer.IsDirectorNamePresent(ctx, name)
	if err != nil {
		return fmt.Errorf("could not check director name: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: %q", model.ErrDirectorExists, name)
	}
	return nil
}

func (dm DirectorManager) withFilms(ctx context.Context, director *model.DirectorEntity) (*model.Director, error) {
	films, err := dm.DirectorFilmStorer.GetFilmsWithDirector(ctx, director.ID)
	if err != nil {
		return nil, fmt.Errorf("could not get films of director '%d': %w", director.ID, err)
	}
	return DirectorFromEntity(director, films), nil
}
