package business

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Agurato/filmbase/internal/metrics"
	"github.com/Agurato/filmbase/internal/model"
)

// MaxNameLength is the maximum number of characters in a film title or director name
const MaxNameLength = 128

// ImportFilms persists uploaded films one after the other.
// A rejected record is reported in the summary and does not stop the import.
func (fm FilmManager) ImportFilms(ctx context.Context, uploads []model.FilmUpload) model.ImportSummary {
	logger := zerolog.Ctx(ctx)
	im := importer{fm: fm}
	summary := model.ImportSummary{Results: make([]model.ImportResult, 0, len(uploads))}

	for i, upload := range uploads {
		id, err := im.importFilm(ctx, upload)
		if err != nil {
			metrics.FilmImports.WithLabelValues("failed").Inc()
			logger.Warn().Int("index", i).Str("title", upload.Title).Err(err).Msg("Film not imported")
		} else {
			metrics.FilmImports.WithLabelValues("imported").Inc()
			logger.Debug().Int("index", i).Int64("filmID", id).Msg("Film imported")
		}
		summary.Results = append(summary.Results, model.ImportResult{
			Index: i,
			Title: upload.Title,
			ID:    id,
			Err:   err,
		})
	}

	logger.Info().Int("imported", summary.Imported()).Int("failed", summary.Failed()).Msg("Film import done")
	return summary
}

// ValidName returns true if name is non-blank and short enough
func ValidName(name string) bool {
	return strings.TrimSpace(name) != "" && utf8.RuneCountInString(name) <= MaxNameLength
}

// foldName removes case and accents, so "Agnes varda" and "Agnès Varda" compare equal
func foldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	folded, _, err := transform.String(t, name)
	if err != nil {
		return strings.ToLower(name)
	}
	return folded
}

type candidate struct {
	name     string
	distance int
}

// ClosestName returns the candidate nearest to name, when it is near enough to be a typo
func ClosestName(name string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	folded := foldName(name)
	scored := lo.Map(candidates, func(c string, _ int) candidate {
		return candidate{name: c, distance: levenshtein.ComputeDistance(folded, foldName(c))}
	})
	best := lo.MinBy(scored, func(a, b candidate) bool {
		return a.distance < b.distance
	})
	return best.name, best.distance <= max(2, utf8.RuneCountInString(name)/4)
}

type importer struct {
	fm FilmManager
	// directors is loaded on the first unknown director
	directors []string
	loaded    bool
}

func (im *importer) importFilm(ctx context.Context, upload model.FilmUpload) (int64, error) {
	if !ValidName(upload.Title) {
		return 0, model.ErrInvalidTitle
	}
	taken, err := im.fm.FilmStorer.IsFilmTitlePresent(ctx, upload.Title, 0)
	if err != nil {
		return 0, fmt.Errorf("could not check film title: %w", err)
	}
	if taken {
		return 0, fmt.Errorf("%w: %q", model.ErrFilmExists, upload.Title)
	}
	if strings.TrimSpace(upload.DirectedBy) == "" {
		return 0, model.ErrMissingDirector
	}
	director, err := im.fm.FilmDirectorStorer.GetDirectorFromName(ctx, upload.DirectedBy)
	if errors.Is(err, model.ErrDirectorNotFound) {
		return 0, im.unknownDirector(ctx, upload.DirectedBy)
	}
	if err != nil {
		return 0, fmt.Errorf("could not get director '%s': %w", upload.DirectedBy, err)
	}

	entity := FilmToEntity(UploadToFilm(upload), director.ID)
	if err := im.fm.FilmStorer.AddFilm(ctx, &entity); err != nil {
		return 0, fmt.Errorf("could not add film to database: %w", err)
	}
	return entity.ID, nil
}

func (im *importer) unknownDirector(ctx context.Context, name string) error {
	if !im.loaded {
		im.loaded = true
		directors, err := im.fm.FilmDirectorStorer.GetDirectors(ctx)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("Could not load directors for suggestions")
		}
		im.directors = lo.Map(directors, func(d model.DirectorEntity, _ int) string {
			return d.Name
		})
	}
	if suggestion, ok := ClosestName(name, im.directors); ok {
		return fmt.Errorf("%w %q, did you mean %q?", model.ErrUnknownDirector, name, suggestion)
	}
	return fmt.Errorf("%w %q", model.ErrUnknownDirector, name)
}
