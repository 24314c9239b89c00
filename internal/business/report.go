package business

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Agurato/filmbase/internal/filter"
	"github.com/Agurato/filmbase/internal/model"
)

// reportFlushRows is the number of rows written between two flushes
const reportFlushRows = 100

// ReportHeader is the first record of every film report
var ReportHeader = []string{"id", "title", "year", "directed by", "running time"}

var errStopIteration = errors.New("iteration stopped")

type flusher interface {
	Flush()
}

// ReportRecord formats a shortened film as a report row. Missing numbers are left empty.
func ReportRecord(item model.FilmListItem) []string {
	return []string{
		strconv.FormatInt(item.ID, 10),
		item.Title,
		optionalInt(item.Year),
		item.DirectedBy,
		optionalInt(item.RunningTime),
	}
}

func optionalInt(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}

// ReportRows yields one record per film matching the filters, ignoring paging.
// Films are read from storage as the sequence is consumed.
func (fm FilmManager) ReportRows(ctx context.Context, filters model.Filters) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		// Directors are loaded up front so that no query runs while films are being iterated
		directors, err := fm.FilmDirectorStorer.GetDirectors(ctx)
		if err != nil {
			yield(nil, fmt.Errorf("could not get directors: %w", err))
			return
		}
		names := directorNames(directors)

		err = fm.FilmStorer.IterateFilmsFiltered(ctx, filter.Build(filters), func(film *model.FilmEntity) error {
			if !yield(ReportRecord(FilmToListItem(film, names[film.DirectorID])), nil) {
				return errStopIteration
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopIteration) {
			yield(nil, fmt.Errorf("could not iterate films: %w", err))
		}
	}
}

// WriteReport writes the CSV report of the films matching the filters to w.
// w is flushed regularly if it supports it.
func (fm FilmManager) WriteReport(ctx context.Context, w io.Writer, filters model.Filters) error {
	cw := csv.NewWriter(w)
	flush := func() error {
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("could not write report: %w", err)
		}
		if f, ok := w.(flusher); ok {
			f.Flush()
		}
		return nil
	}

	if err := cw.Write(ReportHeader); err != nil {
		return fmt.Errorf("could not write report header: %w", err)
	}
	rows := 0
	for record, err := range fm.ReportRows(ctx, filters) {
		if err != nil {
			return err
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("could not write report row: %w", err)
		}
		rows++
		if rows%reportFlushRows == 0 {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Int("rows", rows).Msg("Film report written")
	return nil
}
