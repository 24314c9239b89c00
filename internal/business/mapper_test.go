package business_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Agurato/filmbase/internal/business"
	"github.com/Agurato/filmbase/internal/model"
)

func intPtr(i int) *int {
	return &i
}

func TestJoinValues(t *testing.T) {
	assert.Equal(t, "Unknown", business.JoinValues(nil))
	assert.Equal(t, "Unknown", business.JoinValues([]string{}))
	assert.Equal(t, "Al Pacino", business.JoinValues([]string{"Al Pacino"}))
	assert.Equal(t, "Al Pacino, Robert De Niro", business.JoinValues([]string{"Al Pacino", "Robert De Niro", "Al Pacino"}))
}

func TestSplitValues(t *testing.T) {
	assert.Equal(t, []string{}, business.SplitValues(""))
	assert.Equal(t, []string{"Unknown"}, business.SplitValues("Unknown"))
	assert.Equal(t, []string{"Crime", "Drama"}, business.SplitValues("Crime, Drama, Crime"))
	// Items containing the separator are not preserved
	assert.Equal(t, []string{"Crosby", "Stills", "Nash"}, business.SplitValues(business.JoinValues([]string{"Crosby, Stills", "Nash"})))
}

func TestFilmRoundTrip(t *testing.T) {
	film := model.Film{
		ID:          7,
		Title:       "Heat",
		Year:        intPtr(1995),
		WrittenBy:   []string{"Michael Mann"},
		ProducedBy:  []string{},
		Starring:    []string{"Al Pacino", "Robert De Niro"},
		RunningTime: intPtr(170),
		Genres:      []string{"Crime", "Drama"},
	}

	entity := business.FilmToEntity(film, 3)
	assert.Equal(t, model.FilmEntity{
		ID:          7,
		Title:       "Heat",
		Year:        intPtr(1995),
		DirectorID:  3,
		WrittenBy:   "Michael Mann",
		ProducedBy:  "Unknown",
		Starring:    "Al Pacino, Robert De Niro",
		RunningTime: intPtr(170),
		Genres:      "Crime, Drama",
	}, entity)

	director := &model.Director{ID: 3, Name: "Michael Mann"}
	back := business.FilmFromEntity(&entity, director)
	assert.Equal(t, director, back.DirectedBy)
	assert.Equal(t, []string{"Unknown"}, back.ProducedBy)
	assert.ElementsMatch(t, film.Starring, back.Starring)
	assert.ElementsMatch(t, film.Genres, back.Genres)
}

func TestDirectorFromEntity(t *testing.T) {
	director := business.DirectorFromEntity(&model.DirectorEntity{ID: 1, Name: "David Lynch"}, nil)
	assert.Equal(t, "David Lynch", director.Name)
	assert.NotNil(t, director.Films)
	assert.Empty(t, director.Films)

	director = business.DirectorFromEntity(&model.DirectorEntity{ID: 1, Name: "David Lynch"}, []model.FilmEntity{
		{ID: 2, Title: "Eraserhead", DirectorID: 1, Genres: "Horror"},
	})
	if assert.Len(t, director.Films, 1) {
		assert.Equal(t, "Eraserhead", director.Films[0].Title)
		assert.Nil(t, director.Films[0].DirectedBy)
		assert.Equal(t, []string{"Horror"}, director.Films[0].Genres)
	}
	assert.Equal(t, model.DirectorEntity{ID: 1, Name: "David Lynch"}, business.DirectorToEntity(*director))
}

func TestUploadToFilm(t *testing.T) {
	film := business.UploadToFilm(model.FilmUpload{
		Title:      "Thief",
		Year:       intPtr(1981),
		DirectedBy: "Michael Mann",
		Starring:   []string{"James Caan"},
	})
	assert.Equal(t, "Thief", film.Title)
	assert.Equal(t, 1981, *film.Year)
	assert.Nil(t, film.DirectedBy)
	assert.Equal(t, []string{"James Caan"}, film.Starring)
}

func TestFilmToListItem(t *testing.T) {
	item := business.FilmToListItem(&model.FilmEntity{ID: 4, Title: "Heat", Year: intPtr(1995), RunningTime: intPtr(170)}, "Michael Mann")
	assert.Equal(t, model.FilmListItem{
		ID:          4,
		Title:       "Heat",
		Year:        intPtr(1995),
		DirectedBy:  "Michael Mann",
		RunningTime: intPtr(170),
	}, item)
}
