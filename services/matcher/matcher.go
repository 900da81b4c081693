// Package matcher reconciles free-text watchlist titles against the
// aggregated screening catalog. It is a pure function of its two inputs:
// no I/O, no state across calls.
package matcher

import (
	"sort"
	"strconv"

	"github.com/agnivade/levenshtein"

	"cinescout/models"
)

const (
	// fuzzyMinSimilarity is the edit-distance ratio floor for the fuzzy
	// pass, tuned tight to favour precision over recall. Candidates below
	// it never reach the token-overlap guard.
	fuzzyMinSimilarity = 0.75

	// minTokenOverlap is the fraction of the shorter title's significant
	// tokens that must also appear in the longer title's. It rejects fuzzy
	// candidates that look close by edit distance but share no actual
	// words, like "Possession" vs "Obsession" (0 shared tokens).
	minTokenOverlap = 0.6
)

// catalogTitle is one distinct normalized title present in the catalog,
// carrying every screening that shares it.
type catalogTitle struct {
	normalized string
	tokens     []string
	screenings []models.Screening
}

// index holds the per-call lookup structures: an exact map from normalized
// title to screenings, and the distinct-title list scanned by the fuzzy pass.
type index struct {
	exact  map[string]*catalogTitle
	titles []*catalogTitle
}

func buildIndex(screenings []models.Screening) *index {
	idx := &index{exact: make(map[string]*catalogTitle)}
	for _, s := range screenings {
		norm := NormalizeTitle(s.Title)
		if norm == "" {
			continue
		}
		ct, ok := idx.exact[norm]
		if !ok {
			ct = &catalogTitle{normalized: norm, tokens: significantTokens(norm)}
			idx.exact[norm] = ct
			idx.titles = append(idx.titles, ct)
		}
		ct.screenings = append(ct.screenings, s)
	}
	return idx
}

// MatchFilms finds, for each distinct watchlist film, every screening judged
// to match it, sorted ascending by (date, time). Films with no surviving
// candidates are omitted entirely. The watchlist must already be
// deduplicated by identity key; the engine only collapses entries that
// normalize to the same title and year.
func MatchFilms(watchlist []models.WatchlistFilm, screenings []models.Screening) []models.MatchedScreening {
	if len(watchlist) == 0 || len(screenings) == 0 {
		return nil
	}

	idx := buildIndex(screenings)
	seen := make(map[string]struct{}, len(watchlist))
	var matched []models.MatchedScreening

	for _, film := range watchlist {
		norm := NormalizeTitle(film.Title)
		if norm == "" {
			continue
		}
		collisionKey := norm + "|" + yearKey(film.Year)
		if _, dup := seen[collisionKey]; dup {
			continue
		}
		seen[collisionKey] = struct{}{}

		candidates := matchFilmCandidates(idx, film, norm)
		candidates = filterByYear(candidates, film.Year)
		if len(candidates) == 0 {
			continue
		}
		sortChronologically(candidates)
		matched = append(matched, models.MatchedScreening{Film: film, Screenings: candidates})
	}
	return matched
}

// matchFilmCandidates runs the exact pass, then the fuzzy pass only when the
// exact pass found nothing.
func matchFilmCandidates(idx *index, film models.WatchlistFilm, norm string) []models.Screening {
	if ct, ok := idx.exact[norm]; ok {
		return append([]models.Screening(nil), ct.screenings...)
	}

	filmTokens := significantTokens(norm)
	var out []models.Screening
	for _, ct := range idx.titles {
		if similarity(norm, ct.normalized) < fuzzyMinSimilarity {
			continue
		}
		if !passesTokenGuard(filmTokens, ct.tokens) {
			continue
		}
		out = append(out, ct.screenings...)
	}
	return out
}

// passesTokenGuard applies the token-overlap check. A single-token title
// carries too little signal for a fractional overlap to mean anything: it
// never matches a longer title that merely contains its word ("Dreams" must
// not match "Train Dreams"), so when either side has one significant token
// the token lists must be identical.
func passesTokenGuard(a, b []string) bool {
	if len(a) == 1 || len(b) == 1 {
		return len(a) == len(b) && a[0] == b[0]
	}
	return tokenOverlap(a, b) >= minTokenOverlap
}

// similarity is 1 minus the Levenshtein distance over the longer length, so
// identical strings score 1.0 and wholly different ones approach 0.
func similarity(a, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// filterByYear drops screenings whose known year differs from the film's
// known year. An unknown year on either side never filters.
func filterByYear(candidates []models.Screening, filmYear int) []models.Screening {
	if filmYear == 0 {
		return candidates
	}
	kept := candidates[:0]
	for _, s := range candidates {
		if s.Year != 0 && s.Year != filmYear {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

func sortChronologically(screenings []models.Screening) {
	sort.SliceStable(screenings, func(i, j int) bool {
		if screenings[i].Date != screenings[j].Date {
			return screenings[i].Date < screenings[j].Date
		}
		return screenings[i].Time < screenings[j].Time
	})
}

func yearKey(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
