package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Agurato/filmbase/internal/filter"
	"github.com/Agurato/filmbase/internal/model"
)

// SQLiteMemoryPath opens a database that lives as long as the store
const SQLiteMemoryPath = ":memory:"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS directors (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS films (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	title        TEXT NOT NULL,
	year         INTEGER,
	director_id  INTEGER NOT NULL REFERENCES directors(id) ON DELETE CASCADE,
	written_by   TEXT NOT NULL,
	produced_by  TEXT NOT NULL,
	starring     TEXT NOT NULL,
	running_time INTEGER,
	genres       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS films_director_id ON films(director_id);
CREATE INDEX IF NOT EXISTS films_title ON films(title);
CREATE INDEX IF NOT EXISTS directors_name ON directors(name);
`

const filmColumns = `f.id, f.title, f.year, f.director_id, f.written_by, f.produced_by, f.starring, f.running_time, f.genres`

const filmsFrom = ` FROM films f JOIN directors d ON d.id = f.director_id`

var sqliteColumns = map[filter.Field]string{
	filter.FieldYear:        "f.year",
	filter.FieldRunningTime: "f.running_time",
	filter.FieldDirector:    "d.name",
	filter.FieldWrittenBy:   "f.written_by",
	filter.FieldProducedBy:  "f.produced_by",
	filter.FieldStarring:    "f.starring",
	filter.FieldGenres:      "f.genres",
}

type SQLite struct {
	db *sqlx.DB
}

// NewSQLite opens the database file at path and creates the schema if needed
func NewSQLite(path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("could not open sqlite database %s: %w", path, err)
	}
	// SQLite serializes writes, and each connection to :memory: is a new database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create sqlite schema: %w", err)
	}
	log.Info().Str("path", path).Msg("Using SQLite database")
	return &SQLite{db: db}, nil
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

// sqliteWhere renders a predicate as a WHERE clause and its arguments
func sqliteWhere(predicate filter.Predicate) (string, []any) {
	if predicate.IsEmpty() {
		return "", nil
	}
	clauses := make([]string, 0, len(predicate.Conditions))
	args := make([]any, 0, len(predicate.Conditions))
	for _, c := range predicate.Conditions {
		column := sqliteColumns[c.Field]
		switch c.Op {
		case filter.OpEqual:
			clauses = append(clauses, column+" = ?")
		case filter.OpAtLeast:
			clauses = append(clauses, column+" >= ?")
		case filter.OpAtMost:
			clauses = append(clauses, column+" <= ?")
		case filter.OpContains:
			// instr is case sensitive, unlike LIKE
			clauses = append(clauses, "instr("+column+", ?) > 0")
		}
		if c.Field.IsNumeric() {
			args = append(args, c.Number)
		} else {
			args = append(args, c.Text)
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// AddFilm inserts a film and sets its ID
func (s *SQLite) AddFilm(ctx context.Context, film *model.FilmEntity) error {
	res, err := s.db.NamedExecContext(ctx, `INSERT INTO films
		(title, year, director_id, written_by, produced_by, starring, running_time, genres) VALUES
		(:title, :year, :director_id, :written_by, :produced_by, :starring, :running_time, :genres)`, film)
	if err != nil {
		return err
	}
	film.ID, err = res.LastInsertId()
	return err
}

// UpdateFilm replaces every column of a film
func (s *SQLite) UpdateFilm(ctx context.Context, film *model.FilmEntity) error {
	res, err := s.db.NamedExecContext(ctx, `UPDATE films SET
		title = :title, year = :year, director_id = :director_id, written_by = :written_by,
		produced_by = :produced_by, starring = :starring, running_time = :running_time, genres = :genres
		WHERE id = :id`, film)
	if err != nil {
		return err
	}
	return expectAffected(res, model.ErrFilmNotFound)
}

// DeleteFilm deletes a film
func (s *SQLite) DeleteFilm(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM films WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res, model.ErrFilmNotFound)
}

func (s *SQLite) IsFilmPresent(ctx context.Context, id int64) (present bool, err error) {
	err = s.db.GetContext(ctx, &present, `SELECT EXISTS(SELECT 1 FROM films WHERE id = ?)`, id)
	return
}

func (s *SQLite) IsFilmTitlePresent(ctx context.Context, title string, excludeID int64) (present bool, err error) {
	err = s.db.GetContext(ctx, &present, `SELECT EXISTS(SELECT 1 FROM films WHERE title = ? AND id <> ?)`, title, excludeID)
	return
}

func (s *SQLite) GetFilmFromID(ctx context.Context, id int64) (*model.FilmEntity, error) {
	var film model.FilmEntity
	err := s.db.GetContext(ctx, &film, `SELECT `+filmColumns+` FROM films f WHERE f.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrFilmNotFound
	}
	if err != nil {
		return nil, err
	}
	return &film, nil
}

func (s *SQLite) GetFilmsWithDirector(ctx context.Context, directorID int64) ([]model.FilmEntity, error) {
	films := []model.FilmEntity{}
	err := s.db.SelectContext(ctx, &films, `SELECT `+filmColumns+` FROM films f WHERE f.director_id = ? ORDER BY f.id`, directorID)
	return films, err
}

// GetFilmsFiltered returns a page of the films matching the predicate, ordered by ID, and the number of matching films
func (s *SQLite) GetFilmsFiltered(ctx context.Context, predicate filter.Predicate, skip, limit int64) ([]model.FilmEntity, int64, error) {
	where, args := sqliteWhere(predicate)

	var total int64
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*)`+filmsFrom+where, args...); err != nil {
		return nil, 0, fmt.Errorf("could not count films: %w", err)
	}
	if limit <= 0 {
		limit = -1
	}
	films := []model.FilmEntity{}
	query := `SELECT ` + filmColumns + filmsFrom + where + ` ORDER BY f.id LIMIT ? OFFSET ?`
	if err := s.db.SelectContext(ctx, &films, query, append(args, limit, skip)...); err != nil {
		return nil, 0, fmt.Errorf("could not select films: %w", err)
	}
	return films, total, nil
}

// IterateFilmsFiltered calls fn on each film matching the predicate, ordered by ID.
// The connection is busy until iteration ends, so fn must not use the store.
func (s *SQLite) IterateFilmsFiltered(ctx context.Context, predicate filter.Predicate, fn func(film *model.FilmEntity) error) error {
	where, args := sqliteWhere(predicate)
	rows, err := s.db.QueryxContext(ctx, `SELECT `+filmColumns+filmsFrom+where+` ORDER BY f.id`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var film model.FilmEntity
		if err := rows.StructScan(&film); err != nil {
			return err
		}
		if err := fn(&film); err != nil {
			return err
		}
	}
	return rows.Err()
}

// AddDirector inserts a director and sets its ID
func (s *SQLite) AddDirector(ctx context.Context, director *model.DirectorEntity) error {
	res, err := s.db.NamedExecContext(ctx, `INSERT INTO directors (name) VALUES (:name)`, director)
	if err != nil {
		return err
	}
	director.ID, err = res.LastInsertId()
	return err
}

func (s *SQLite) UpdateDirector(ctx context.Context, director *model.DirectorEntity) error {
	res, err := s.db.NamedExecContext(ctx, `UPDATE directors SET name = :name WHERE id = :id`, director)
	if err != nil {
		return err
	}
	return expectAffected(res, model.ErrDirectorNotFound)
}

// DeleteDirector deletes a director and their films in a single transaction
func (s *SQLite) DeleteDirector(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM films WHERE director_id = ?`, id); err != nil {
		return fmt.Errorf("could not delete films of director: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM directors WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := expectAffected(res, model.ErrDirectorNotFound); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) IsDirectorPresent(ctx context.Context, id int64) (present bool, err error) {
	err = s.db.GetContext(ctx, &present, `SELECT EXISTS(SELECT 1 FROM directors WHERE id = ?)`, id)
	return
}

func (s *SQLite) IsDirectorNamePresent(ctx context.Context, name string) (present bool, err error) {
	err = s.db.GetContext(ctx, &present, `SELECT EXISTS(SELECT 1 FROM directors WHERE name = ?)`, name)
	return
}

func (s *SQLite) GetDirectors(ctx context.Context) ([]model.DirectorEntity, error) {
	directors := []model.DirectorEntity{}
	err := s.db.SelectContext(ctx, &directors, `SELECT id, name FROM directors ORDER BY id`)
	return directors, err
}

func (s *SQLite) GetDirectorFromID(ctx context.Context, id int64) (*model.DirectorEntity, error) {
	return s.getDirector(ctx, `SELECT id, name FROM directors WHERE id = ?`, id)
}

func (s *SQLite) GetDirectorFromName(ctx context.Context, name string) (*model.DirectorEntity, error) {
	return s.getDirector(ctx, `SELECT id, name FROM directors WHERE name = ? ORDER BY id LIMIT 1`, name)
}

func (s *SQLite) GetDirectorsFromIDs(ctx context.Context, ids []int64) ([]model.DirectorEntity, error) {
	directors := []model.DirectorEntity{}
	if len(ids) == 0 {
		return directors, nil
	}
	query, args, err := sqlx.In(`SELECT id, name FROM directors WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	err = s.db.SelectContext(ctx, &directors, s.db.Rebind(query), args...)
	return directors, err
}

func (s *SQLite) getDirector(ctx context.Context, query string, arg any) (*model.DirectorEntity, error) {
	var director model.DirectorEntity
	err := s.db.GetContext(ctx, &director, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrDirectorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &director, nil
}

// expectAffected returns notFound if the statement changed no row
func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
