package matcher

import (
	"testing"

	"cinescout/models"
)

func screening(title string, year int, date, clock string) models.Screening {
	return models.Screening{
		Title: title,
		Year:  year,
		Date:  date,
		Time:  clock,
		Venue: "Test Venue",
	}
}

func film(title string, year int) models.WatchlistFilm {
	return models.WatchlistFilm{Title: title, Year: year, IdentityKey: "film:" + title}
}

func matchTitles(t *testing.T, watch models.WatchlistFilm, catalog ...models.Screening) []models.MatchedScreening {
	t.Helper()
	return MatchFilms([]models.WatchlistFilm{watch}, catalog)
}

func TestSingleTokenTitleNeverMatchesSuperset(t *testing.T) {
	tests := []struct {
		name      string
		watch     string
		catalog   string
		wantMatch bool
	}{
		{"substring of two-word title", "Dreams", "Train Dreams", false},
		{"substring of another two-word title", "Dreams", "Magazine Dreams", false},
		{"exact single token", "Dreams", "Dreams", true},
		{"single token with numeric suffix", "Dreams", "Dreams 2", false},
		{"similar but distinct single tokens", "Possession", "Obsession", false},
		{"case and punctuation variants", "Heat", "HEAT!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchTitles(t, film(tt.watch, 0), screening(tt.catalog, 0, "2026-09-12", "19:30"))
			if matched := len(got) > 0; matched != tt.wantMatch {
				t.Fatalf("%q vs %q: matched=%v, want %v", tt.watch, tt.catalog, matched, tt.wantMatch)
			}
		})
	}
}

func TestMultiTokenExactTitleMatchesItself(t *testing.T) {
	got := matchTitles(t, film("Wild Strawberries", 0), screening("Wild Strawberries", 1957, "2026-09-20", "18:00"))
	if len(got) != 1 {
		t.Fatalf("expected exactly one matched film, got %d", len(got))
	}
	if len(got[0].Screenings) != 1 {
		t.Fatalf("expected 1 screening, got %d", len(got[0].Screenings))
	}
}

func TestFuzzyPassToleratesSmallVariants(t *testing.T) {
	tests := []struct {
		name      string
		watch     string
		catalog   string
		wantMatch bool
	}{
		{"accented vs plain", "Amélie", "Amelie", true},
		{"ampersand vs and", "Crimes & Misdemeanors", "Crimes and Misdemeanors", true},
		{"missing leading article", "Seventh Seal", "The Seventh Seal", true},
		{"misspelled token fails the overlap guard", "Wild Strawberies", "Wild Strawberries", false},
		{"shared word only", "Tokyo Story", "West Side Story", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchTitles(t, film(tt.watch, 0), screening(tt.catalog, 0, "2026-10-02", "20:15"))
			if matched := len(got) > 0; matched != tt.wantMatch {
				t.Fatalf("%q vs %q: matched=%v, want %v", tt.watch, tt.catalog, matched, tt.wantMatch)
			}
		})
	}
}

func TestYearDisambiguation(t *testing.T) {
	catalog := []models.Screening{
		screening("Solaris", 1972, "2026-09-05", "17:00"),
		screening("Solaris", 2002, "2026-09-06", "20:30"),
	}
	watchlist := []models.WatchlistFilm{
		{Title: "Solaris", Year: 1972, IdentityKey: "film:solaris-1972"},
		{Title: "Solaris", Year: 2002, IdentityKey: "film:solaris-2002"},
	}

	got := MatchFilms(watchlist, catalog)
	if len(got) != 2 {
		t.Fatalf("expected 2 matched films, got %d", len(got))
	}
	for _, m := range got {
		if len(m.Screenings) != 1 {
			t.Fatalf("film year %d: got %d screenings, want 1", m.Film.Year, len(m.Screenings))
		}
		if m.Screenings[0].Year != m.Film.Year {
			t.Fatalf("film year %d matched screening year %d", m.Film.Year, m.Screenings[0].Year)
		}
	}
}

func TestUnknownYearDoesNotFilter(t *testing.T) {
	catalog := []models.Screening{
		screening("Solaris", 0, "2026-09-05", "17:00"),
		screening("Solaris", 1972, "2026-09-06", "20:30"),
	}

	got := matchTitles(t, film("Solaris", 1972), catalog...)
	if len(got) != 1 {
		t.Fatalf("expected 1 matched film, got %d", len(got))
	}
	if len(got[0].Screenings) != 2 {
		t.Fatalf("unknown catalog year must survive the filter; got %d screenings, want 2", len(got[0].Screenings))
	}
}

func TestTitleYearCollisionCollapsedOnce(t *testing.T) {
	// Same title+year under two identity keys: upstream identity dedup is
	// required, but the engine still collapses the title+year collision.
	watchlist := []models.WatchlistFilm{
		{Title: "Stalker", Year: 1979, IdentityKey: "film:stalker-a"},
		{Title: "Stalker", Year: 1979, IdentityKey: "film:stalker-b"},
	}
	got := MatchFilms(watchlist, []models.Screening{screening("Stalker", 1979, "2026-09-09", "19:00")})
	if len(got) != 1 {
		t.Fatalf("expected one matched film for the collision, got %d", len(got))
	}
}

func TestIdentityDedupBeforeMatching(t *testing.T) {
	duplicated := []models.WatchlistFilm{
		{Title: "Stalker", Year: 1979, IdentityKey: "film:stalker"},
		{Title: "Stalker", Year: 1979, IdentityKey: "film:stalker"},
	}
	got := MatchFilms(models.DedupeWatchlist(duplicated), []models.Screening{
		screening("Stalker", 1979, "2026-09-09", "19:00"),
	})
	if len(got) != 1 {
		t.Fatalf("expected exactly one matched film after dedup, got %d", len(got))
	}
}

func TestScreeningsSortedChronologically(t *testing.T) {
	catalog := []models.Screening{
		screening("Playtime", 1967, "2026-09-10", "20:00"),
		screening("Playtime", 1967, "2026-09-08", "14:30"),
		screening("Playtime", 1967, "2026-09-08", "11:00"),
		screening("Playtime", 1967, "2026-09-09", "19:45"),
	}

	got := matchTitles(t, film("Playtime", 1967), catalog...)
	if len(got) != 1 {
		t.Fatalf("expected 1 matched film, got %d", len(got))
	}
	order := got[0].Screenings
	for i := 1; i < len(order); i++ {
		prev, cur := order[i-1], order[i]
		if prev.Date > cur.Date || (prev.Date == cur.Date && prev.Time > cur.Time) {
			t.Fatalf("screenings out of order at %d: %s %s before %s %s", i, prev.Date, prev.Time, cur.Date, cur.Time)
		}
	}
}

func TestNoEmptyMatchedScreenings(t *testing.T) {
	got := MatchFilms(
		[]models.WatchlistFilm{film("Nothing Plays This", 0), film("Playtime", 0)},
		[]models.Screening{screening("Playtime", 1967, "2026-09-08", "14:30")},
	)
	if len(got) != 1 {
		t.Fatalf("expected films without candidates to be omitted, got %d results", len(got))
	}
	if got[0].Film.Title != "Playtime" {
		t.Fatalf("unexpected matched film %q", got[0].Film.Title)
	}
}

func TestEmptyInputs(t *testing.T) {
	if got := MatchFilms(nil, []models.Screening{screening("Playtime", 1967, "2026-09-08", "14:30")}); len(got) != 0 {
		t.Fatalf("empty watchlist should match nothing, got %d", len(got))
	}
	if got := MatchFilms([]models.WatchlistFilm{film("Playtime", 0)}, nil); len(got) != 0 {
		t.Fatalf("empty catalog should match nothing, got %d", len(got))
	}
}

func TestWatchlistOrderPreserved(t *testing.T) {
	catalog := []models.Screening{
		screening("Playtime", 1967, "2026-09-08", "14:30"),
		screening("Stalker", 1979, "2026-09-09", "19:00"),
		screening("Heat", 1995, "2026-09-10", "21:00"),
	}
	watchlist := []models.WatchlistFilm{film("Heat", 1995), film("Playtime", 1967), film("Stalker", 1979)}

	got := MatchFilms(watchlist, catalog)
	if len(got) != 3 {
		t.Fatalf("expected 3 matched films, got %d", len(got))
	}
	wantOrder := []string{"Heat", "Playtime", "Stalker"}
	for i, m := range got {
		if m.Film.Title != wantOrder[i] {
			t.Fatalf("result[%d] = %q, want %q", i, m.Film.Title, wantOrder[i])
		}
	}
}
