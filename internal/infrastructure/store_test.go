package infrastructure_test

import (
	"context"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agurato/filmbase/internal/business"
	"github.com/Agurato/filmbase/internal/filter"
	"github.com/Agurato/filmbase/internal/infrastructure"
	"github.com/Agurato/filmbase/internal/model"
)

type store interface {
	business.FilmStorer
	business.FilmDirectorStorer
	business.DirectorStorer
}

func intPtr(i int) *int {
	return &i
}

func newSQLite(t *testing.T) store {
	s, err := infrastructure.NewSQLite(infrastructure.SQLiteMemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMemoryStore(t *testing.T) {
	testStore(t, infrastructure.NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	testStore(t, newSQLite(t))
}

func TestSQLiteFile(t *testing.T) {
	path := t.TempDir() + "/filmbase.db"
	ctx := context.Background()

	s, err := infrastructure.NewSQLite(path)
	require.NoError(t, err)
	director := model.DirectorEntity{Name: "Agnès Varda"}
	require.NoError(t, s.AddDirector(ctx, &director))
	require.NoError(t, s.Close())

	s, err = infrastructure.NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetDirectorFromName(ctx, "Agnès Varda")
	require.NoError(t, err)
	assert.Equal(t, director.ID, got.ID)
}

func TestMongoDBStore(t *testing.T) {
	uri := os.Getenv("FILMBASE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("FILMBASE_TEST_MONGO_URI is not set")
	}
	m, err := infrastructure.NewMongoDB(context.Background(), uri, "filmbase_test_"+t.Name())
	require.NoError(t, err)
	defer m.Close()
	testStore(t, m)
}

// testStore runs the same scenario against every store implementation.
// The store must be empty.
func testStore(t *testing.T, s store) {
	ctx := context.Background()

	mann := model.DirectorEntity{Name: "Michael Mann"}
	require.NoError(t, s.AddDirector(ctx, &mann))
	lynch := model.DirectorEntity{Name: "David Lynch"}
	require.NoError(t, s.AddDirector(ctx, &lynch))
	assert.NotZero(t, mann.ID)
	assert.NotEqual(t, mann.ID, lynch.ID)

	heat := model.FilmEntity{
		Title: "Heat", Year: intPtr(1995), DirectorID: mann.ID,
		WrittenBy: "Michael Mann", ProducedBy: "Art Linson, Michael Mann",
		Starring: "Al Pacino, Robert De Niro", RunningTime: intPtr(170), Genres: "Crime, Drama",
	}
	thief := model.FilmEntity{
		Title: "Thief", Year: intPtr(1981), DirectorID: mann.ID,
		WrittenBy: "Michael Mann", ProducedBy: "Jerry Bruckheimer",
		Starring: "James Caan", RunningTime: intPtr(123), Genres: "Crime",
	}
	eraserhead := model.FilmEntity{
		Title: "Eraserhead", DirectorID: lynch.ID,
		WrittenBy: "David Lynch", ProducedBy: "David Lynch",
		Starring: "Jack Nance", Genres: "Horror",
	}
	for _, f := range []*model.FilmEntity{&heat, &thief, &eraserhead} {
		require.NoError(t, s.AddFilm(ctx, f))
		assert.NotZero(t, f.ID)
	}

	t.Run("lookups", func(t *testing.T) {
		got, err := s.GetFilmFromID(ctx, heat.ID)
		require.NoError(t, err)
		assert.Equal(t, heat, *got)

		_, err = s.GetFilmFromID(ctx, 9999)
		assert.ErrorIs(t, err, model.ErrFilmNotFound)

		present, err := s.IsFilmPresent(ctx, thief.ID)
		require.NoError(t, err)
		assert.True(t, present)

		taken, err := s.IsFilmTitlePresent(ctx, "Heat", 0)
		require.NoError(t, err)
		assert.True(t, taken)
		taken, err = s.IsFilmTitlePresent(ctx, "Heat", heat.ID)
		require.NoError(t, err)
		assert.False(t, taken)

		director, err := s.GetDirectorFromName(ctx, "David Lynch")
		require.NoError(t, err)
		assert.Equal(t, lynch, *director)
		_, err = s.GetDirectorFromName(ctx, "david lynch")
		assert.ErrorIs(t, err, model.ErrDirectorNotFound)

		directors, err := s.GetDirectorsFromIDs(ctx, []int64{lynch.ID, 9999})
		require.NoError(t, err)
		assert.Equal(t, []model.DirectorEntity{lynch}, directors)

		films, err := s.GetFilmsWithDirector(ctx, mann.ID)
		require.NoError(t, err)
		assert.Equal(t, []model.FilmEntity{heat, thief}, films)
	})

	t.Run("filtered", func(t *testing.T) {
		tests := []struct {
			name    string
			filters model.Filters
			titles  []string
		}{
			{"all", model.Filters{}, []string{"Heat", "Thief", "Eraserhead"}},
			{"director", model.Filters{DirectedBy: strPtr("Michael Mann")}, []string{"Heat", "Thief"}},
			{"unknown director", model.Filters{DirectedBy: strPtr("Nobody")}, []string{}},
			{"starring", model.Filters{Starring: []string{"De Niro"}}, []string{"Heat"}},
			{"case sensitive", model.Filters{Starring: []string{"de niro"}}, []string{}},
			{"genres", model.Filters{Genres: []string{"Crime", "Drama"}}, []string{"Heat"}},
			{"year since", model.Filters{YearSince: intPtr(1990)}, []string{"Heat"}},
			{"year to", model.Filters{YearTo: intPtr(1990)}, []string{"Thief"}},
			{"running time range", model.Filters{RunningTimeMin: intPtr(100), RunningTimeMax: intPtr(150)}, []string{"Thief"}},
			{"exact year and director", model.Filters{Year: intPtr(1981), DirectedBy: strPtr("Michael Mann")}, []string{"Thief"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				films, total, err := s.GetFilmsFiltered(ctx, filter.Build(tt.filters), 0, 10)
				require.NoError(t, err)
				assert.Equal(t, int64(len(tt.titles)), total)
				assert.Equal(t, tt.titles, titles(films))
			})
		}
	})

	t.Run("paging", func(t *testing.T) {
		films, total, err := s.GetFilmsFiltered(ctx, filter.Predicate{}, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, []string{"Thief"}, titles(films))

		films, _, err = s.GetFilmsFiltered(ctx, filter.Predicate{}, 3, 10)
		require.NoError(t, err)
		assert.Empty(t, films)

		films, total, err = s.GetFilmsFiltered(ctx, filter.Predicate{}, math.MaxInt64/10*10, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Empty(t, films)
	})

	t.Run("iterate", func(t *testing.T) {
		var seen []string
		err := s.IterateFilmsFiltered(ctx, filter.Build(model.Filters{WrittenBy: []string{"Mann"}}), func(f *model.FilmEntity) error {
			seen = append(seen, f.Title)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Heat", "Thief"}, seen)

		stop := assert.AnError
		err = s.IterateFilmsFiltered(ctx, filter.Predicate{}, func(*model.FilmEntity) error {
			return stop
		})
		assert.ErrorIs(t, err, stop)
	})

	t.Run("update", func(t *testing.T) {
		updated := thief
		updated.Title = "Violent Streets"
		updated.Year = nil
		require.NoError(t, s.UpdateFilm(ctx, &updated))
		got, err := s.GetFilmFromID(ctx, thief.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, *got)

		missing := model.FilmEntity{ID: 9999, Title: "Missing"}
		assert.ErrorIs(t, s.UpdateFilm(ctx, &missing), model.ErrFilmNotFound)

		renamed := lynch
		renamed.Name = "David K. Lynch"
		require.NoError(t, s.UpdateDirector(ctx, &renamed))
		taken, err := s.IsDirectorNamePresent(ctx, "David K. Lynch")
		require.NoError(t, err)
		assert.True(t, taken)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteFilm(ctx, eraserhead.ID))
		assert.ErrorIs(t, s.DeleteFilm(ctx, eraserhead.ID), model.ErrFilmNotFound)

		require.NoError(t, s.DeleteDirector(ctx, mann.ID))
		present, err := s.IsDirectorPresent(ctx, mann.ID)
		require.NoError(t, err)
		assert.False(t, present)
		films, err := s.GetFilmsWithDirector(ctx, mann.ID)
		require.NoError(t, err)
		assert.Empty(t, films)
		present, err = s.IsFilmPresent(ctx, heat.ID)
		require.NoError(t, err)
		assert.False(t, present)

		assert.ErrorIs(t, s.DeleteDirector(ctx, mann.ID), model.ErrDirectorNotFound)

		directors, err := s.GetDirectors(ctx)
		require.NoError(t, err)
		assert.Len(t, directors, 1)
	})
}

func strPtr(s string) *string {
	return &s
}

func titles(films []model.FilmEntity) []string {
	t := make([]string, 0, len(films))
	for _, f := range films {
		t = append(t, f.Title)
	}
	return t
}
