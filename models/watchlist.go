package models

import "strconv"

// WatchlistFilm is one entry a user wants to see.
type WatchlistFilm struct {
	Title       string `json:"title"`
	Year        int    `json:"year,omitempty"` // 0 = unknown
	IdentityKey string `json:"identityKey"`    // stable external identifier, e.g. a canonical per-film URI
}

// DedupeWatchlist removes entries sharing an identity key, keeping the first
// occurrence in input order. The matching engine requires an
// identity-deduplicated watchlist; it only collapses title+year collisions
// internally, so upstream duplicates would otherwise appear twice in output.
func DedupeWatchlist(films []WatchlistFilm) []WatchlistFilm {
	seen := make(map[string]struct{}, len(films))
	out := make([]WatchlistFilm, 0, len(films))
	for _, f := range films {
		key := f.IdentityKey
		if key == "" {
			// No identity to collapse on; fall back to title+year.
			key = f.Title + "|" + strconv.Itoa(f.Year)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

// MatchedScreening pairs one watchlist film with every screening judged to
// match it, sorted ascending by (date, time).
type MatchedScreening struct {
	Film       WatchlistFilm `json:"film"`
	Screenings []Screening   `json:"screenings"`
}
