// Package filter turns optional film filters into a predicate that every
// storage backend can evaluate or render into its own query language.
package filter

import (
	"strings"

	"github.com/samber/lo"

	"github.com/Agurato/filmbase/internal/model"
)

// Field is a film attribute a Condition applies to
type Field int

const (
	FieldYear Field = iota
	FieldRunningTime
	FieldDirector
	FieldWrittenBy
	FieldProducedBy
	FieldStarring
	FieldGenres
)

var fieldNames = map[Field]string{
	FieldYear:        "year",
	FieldRunningTime: "running_time",
	FieldDirector:    "director",
	FieldWrittenBy:   "written_by",
	FieldProducedBy:  "produced_by",
	FieldStarring:    "starring",
	FieldGenres:      "genres",
}

func (f Field) String() string {
	return fieldNames[f]
}

// IsNumeric returns true for fields compared with Condition.Number
func (f Field) IsNumeric() bool {
	return f == FieldYear || f == FieldRunningTime
}

// Op is the comparison a Condition performs
type Op int

const (
	OpEqual Op = iota
	OpAtLeast
	OpAtMost
	OpContains
)

// Condition is a single typed constraint on a film.
// Numeric fields use Number, text fields use Text.
type Condition struct {
	Field  Field
	Op     Op
	Number int
	Text   string
}

// Match evaluates the condition against a persisted film and the name of its director
func (c Condition) Match(film *model.FilmEntity, directorName string) bool {
	switch c.Field {
	case FieldYear:
		return c.matchNumber(film.Year)
	case FieldRunningTime:
		return c.matchNumber(film.RunningTime)
	case FieldDirector:
		return c.matchText(directorName)
	case FieldWrittenBy:
		return c.matchText(film.WrittenBy)
	case FieldProducedBy:
		return c.matchText(film.ProducedBy)
	case FieldStarring:
		return c.matchText(film.Starring)
	case FieldGenres:
		return c.matchText(film.Genres)
	}
	return false
}

// A missing value never satisfies a numeric condition
func (c Condition) matchNumber(value *int) bool {
	if value == nil {
		return false
	}
	switch c.Op {
	case OpEqual:
		return *value == c.Number
	case OpAtLeast:
		return *value >= c.Number
	case OpAtMost:
		return *value <= c.Number
	}
	return false
}

func (c Condition) matchText(value string) bool {
	switch c.Op {
	case OpEqual:
		return value == c.Text
	case OpContains:
		return strings.Contains(value, c.Text)
	}
	return false
}

// Predicate is the conjunction of its conditions. The zero value matches every film.
type Predicate struct {
	Conditions []Condition
}

// IsEmpty returns true if the predicate matches every film
func (p Predicate) IsEmpty() bool {
	return len(p.Conditions) == 0
}

// Match returns true if every condition matches
func (p Predicate) Match(film *model.FilmEntity, directorName string) bool {
	return lo.EveryBy(p.Conditions, func(c Condition) bool {
		return c.Match(film, directorName)
	})
}

// DirectorNames returns the director names the predicate requires, in order
func (p Predicate) DirectorNames() []string {
	return lo.FilterMap(p.Conditions, func(c Condition, _ int) (string, bool) {
		return c.Text, c.Field == FieldDirector
	})
}

// Build folds the populated filters into a single predicate.
// Paging fields are ignored.
func Build(filters model.Filters) Predicate {
	var b builder

	b.containsAll(FieldWrittenBy, filters.WrittenBy)
	b.containsAll(FieldProducedBy, filters.ProducedBy)
	b.containsAll(FieldStarring, filters.Starring)
	b.containsAll(FieldGenres, filters.Genres)
	if filters.DirectedBy != nil {
		b.add(Condition{Field: FieldDirector, Op: OpEqual, Text: *filters.DirectedBy})
	}
	b.number(FieldRunningTime, OpEqual, filters.RunningTime)
	b.number(FieldRunningTime, OpAtLeast, filters.RunningTimeMin)
	b.number(FieldRunningTime, OpAtMost, filters.RunningTimeMax)
	b.number(FieldYear, OpEqual, filters.Year)
	b.number(FieldYear, OpAtLeast, filters.YearSince)
	b.number(FieldYear, OpAtMost, filters.YearTo)

	return Predicate{Conditions: b.conditions}
}

type builder struct {
	conditions []Condition
}

func (b *builder) add(c Condition) {
	b.conditions = append(b.conditions, c)
}

// containsAll requires every value to be a substring of the field
func (b *builder) containsAll(field Field, values []string) {
	for _, v := range lo.Uniq(values) {
		b.add(Condition{Field: field, Op: OpContains, Text: v})
	}
}

func (b *builder) number(field Field, op Op, value *int) {
	if value != nil {
		b.add(Condition{Field: field, Op: op, Number: *value})
	}
}
