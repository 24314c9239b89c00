package infrastructure

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/Agurato/filmbase/internal/filter"
	"github.com/Agurato/filmbase/internal/model"
)

// Memory keeps films and directors in maps. Its zero value is not usable, see NewMemory.
type Memory struct {
	mu sync.RWMutex

	films     map[int64]model.FilmEntity
	directors map[int64]model.DirectorEntity

	lastFilmID     int64
	lastDirectorID int64
}

func NewMemory() *Memory {
	return &Memory{
		films:     make(map[int64]model.FilmEntity),
		directors: make(map[int64]model.DirectorEntity),
	}
}

// Close does nothing
func (m *Memory) Close() error {
	return nil
}

// AddFilm stores a film and sets its ID
func (m *Memory) AddFilm(_ context.Context, film *model.FilmEntity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilmID++
	film.ID = m.lastFilmID
	m.films[film.ID] = *film
	return nil
}

// UpdateFilm replaces a stored film
func (m *Memory) UpdateFilm(_ context.Context, film *model.FilmEntity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.films[film.ID]; !ok {
		return model.ErrFilmNotFound
	}
	m.films[film.ID] = *film
	return nil
}

// DeleteFilm removes a film
func (m *Memory) DeleteFilm(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.films[id]; !ok {
		return model.ErrFilmNotFound
	}
	delete(m.films, id)
	return nil
}

// IsFilmPresent returns true if a film has this ID
func (m *Memory) IsFilmPresent(_ context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.films[id]
	return ok, nil
}

// IsFilmTitlePresent returns true if a film other than excludeID has this title
func (m *Memory) IsFilmTitlePresent(_ context.Context, title string, excludeID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.films {
		if f.Title == title && f.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// GetFilmFromID returns a copy of a stored film
func (m *Memory) GetFilmFromID(_ context.Context, id int64) (*model.FilmEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	film, ok := m.films[id]
	if !ok {
		return nil, model.ErrFilmNotFound
	}
	return &film, nil
}

// GetFilmsWithDirector returns the films of a director, ordered by ID
func (m *Memory) GetFilmsWithDirector(_ context.Context, directorID int64) ([]model.FilmEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedFilms(func(f *model.FilmEntity) bool {
		return f.DirectorID == directorID
	}), nil
}

// GetFilmsFiltered returns a page of the films matching the predicate, ordered by ID, and the number of matching films
func (m *Memory) GetFilmsFiltered(_ context.Context, predicate filter.Predicate, skip, limit int64) ([]model.FilmEntity, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	films := m.sortedFilms(m.matcher(predicate))
	total := int64(len(films))
	if skip < 0 || skip >= total {
		return []model.FilmEntity{}, total, nil
	}
	end := total
	if limit > 0 && skip+limit < total {
		end = skip + limit
	}
	return films[skip:end], total, nil
}

// IterateFilmsFiltered calls fn on every film matching the predicate, ordered by ID.
// The films are copied beforehand so fn may use the store.
func (m *Memory) IterateFilmsFiltered(ctx context.Context, predicate filter.Predicate, fn func(film *model.FilmEntity) error) error {
	m.mu.RLock()
	films := m.sortedFilms(m.matcher(predicate))
	m.mu.RUnlock()

	for i := range films {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(&films[i]); err != nil {
			return err
		}
	}
	return nil
}

// matcher must be called with the lock held
func (m *Memory) matcher(predicate filter.Predicate) func(f *model.FilmEntity) bool {
	return func(f *model.FilmEntity) bool {
		return predicate.Match(f, m.directors[f.DirectorID].Name)
	}
}

// sortedFilms must be called with the lock held
func (m *Memory) sortedFilms(keep func(f *model.FilmEntity) bool) []model.FilmEntity {
	films := make([]model.FilmEntity, 0)
	for _, f := range m.films {
		if keep(&f) {
			films = append(films, f)
		}
	}
	slices.SortFunc(films, func(a, b model.FilmEntity) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return films
}

// AddDirector stores a director and sets its ID
func (m *Memory) AddDirector(_ context.Context, director *model.DirectorEntity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastDirectorID++
	director.ID = m.lastDirectorID
	m.directors[director.ID] = *director
	return nil
}

// UpdateDirector replaces a stored director
func (m *Memory) UpdateDirector(_ context.Context, director *model.DirectorEntity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.directors[director.ID]; !ok {
		return model.ErrDirectorNotFound
	}
	m.directors[director.ID] = *director
	return nil
}

// DeleteDirector removes a director and their films
func (m *Memory) DeleteDirector(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.directors[id]; !ok {
		return model.ErrDirectorNotFound
	}
	delete(m.directors, id)
	for filmID, f := range m.films {
		if f.DirectorID == id {
			delete(m.films, filmID)
		}
	}
	return nil
}

// IsDirectorPresent returns true if a director has this ID
func (m *Memory) IsDirectorPresent(_ context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.directors[id]
	return ok, nil
}

// IsDirectorNamePresent returns true if a director has this name
func (m *Memory) IsDirectorNamePresent(_ context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.directorFromName(name)
	return ok, nil
}

// GetDirectors returns every director, ordered by ID
func (m *Memory) GetDirectors(_ context.Context) ([]model.DirectorEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	directors := lo.Values(m.directors)
	slices.SortFunc(directors, func(a, b model.DirectorEntity) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return directors, nil
}

// GetDirectorFromID returns a copy of a stored director
func (m *Memory) GetDirectorFromID(_ context.Context, id int64) (*model.DirectorEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	director, ok := m.directors[id]
	if !ok {
		return nil, model.ErrDirectorNotFound
	}
	return &director, nil
}

// GetDirectorFromName returns the director with this exact name
func (m *Memory) GetDirectorFromName(_ context.Context, name string) (*model.DirectorEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	director, ok := m.directorFromName(name)
	if !ok {
		return nil, model.ErrDirectorNotFound
	}
	return &director, nil
}

// GetDirectorsFromIDs returns the existing directors among ids
func (m *Memory) GetDirectorsFromIDs(_ context.Context, ids []int64) ([]model.DirectorEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.FilterMap(ids, func(id int64, _ int) (model.DirectorEntity, bool) {
		d, ok := m.directors[id]
		return d, ok
	}), nil
}

func (m *Memory) directorFromName(name string) (model.DirectorEntity, bool) {
	return lo.Find(lo.Values(m.directors), func(d model.DirectorEntity) bool {
		return d.Name == name
	})
}
