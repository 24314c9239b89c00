package business

import (
	"strings"

	"github.com/samber/lo"

	"github.com/Agurato/filmbase/internal/model"
)

const (
	// ValueSeparator joins the items of a multi-valued film field in storage.
	// Items containing it are split apart when read back.
	ValueSeparator = ", "
	// UnknownValue is persisted in place of an empty multi-valued field
	UnknownValue = "Unknown"
)

// JoinValues flattens a set of strings to its persisted form
func JoinValues(values []string) string {
	if len(values) == 0 {
		return UnknownValue
	}
	return strings.Join(lo.Uniq(values), ValueSeparator)
}

// SplitValues expands a persisted field back to a set of strings
func SplitValues(value string) []string {
	if value == "" {
		return []string{}
	}
	return lo.Uniq(strings.Split(value, ValueSeparator))
}

// FilmToEntity converts an API film to its persisted form, referencing the given director
func FilmToEntity(film model.Film, directorID int64) model.FilmEntity {
	return model.FilmEntity{
		ID:          film.ID,
		Title:       film.Title,
		Year:        film.Year,
		DirectorID:  directorID,
		WrittenBy:   JoinValues(film.WrittenBy),
		ProducedBy:  JoinValues(film.ProducedBy),
		Starring:    JoinValues(film.Starring),
		RunningTime: film.RunningTime,
		Genres:      JoinValues(film.Genres),
	}
}

// FilmFromEntity converts a persisted film to its API form.
// director may be nil when the film is listed under its director.
func FilmFromEntity(film *model.FilmEntity, director *model.Director) model.Film {
	return model.Film{
		ID:          film.ID,
		Title:       film.Title,
		Year:        film.Year,
		DirectedBy:  director,
		WrittenBy:   SplitValues(film.WrittenBy),
		ProducedBy:  SplitValues(film.ProducedBy),
		Starring:    SplitValues(film.Starring),
		RunningTime: film.RunningTime,
		Genres:      SplitValues(film.Genres),
	}
}

// DirectorToEntity converts an API director to its persisted form. Films are not part of it.
func DirectorToEntity(director model.Director) model.DirectorEntity {
	return model.DirectorEntity{
		ID:   director.ID,
		Name: director.Name,
	}
}

// DirectorFromEntity converts a persisted director and the films they directed to the API form
func DirectorFromEntity(director *model.DirectorEntity, films []model.FilmEntity) *model.Director {
	return &model.Director{
		ID:   director.ID,
		Name: director.Name,
		Films: lo.Map(films, func(f model.FilmEntity, _ int) model.Film {
			return FilmFromEntity(&f, nil)
		}),
	}
}

// UploadToFilm converts an uploaded record to an API film. The director is resolved separately.
func UploadToFilm(upload model.FilmUpload) model.Film {
	return model.Film{
		Title:       upload.Title,
		Year:        upload.Year,
		WrittenBy:   upload.WrittenBy,
		ProducedBy:  upload.ProducedBy,
		Starring:    upload.Starring,
		RunningTime: upload.RunningTime,
		Genres:      upload.Genres,
	}
}

// FilmToListItem projects a persisted film to its shortened form
func FilmToListItem(film *model.FilmEntity, directorName string) model.FilmListItem {
	return model.FilmListItem{
		ID:          film.ID,
		Title:       film.Title,
		Year:        film.Year,
		DirectedBy:  directorName,
		RunningTime: film.RunningTime,
	}
}
