package models

// Screening represents one bookable showing of one title at one venue.
// Date and Time are always in the venue's local civil time; adapters convert
// any UTC/offset timestamps before emitting a Screening.
type Screening struct {
	Title      string `json:"title"`                // display title, original casing/punctuation preserved
	Year       int    `json:"year,omitempty"`       // release year, 0 = unknown
	Date       string `json:"date"`                 // YYYY-MM-DD, venue-local
	Time       string `json:"time"`                 // HH:MM, venue-local
	Venue      string `json:"venue"`                // canonical venue name, stable identifier
	BookingURL string `json:"bookingUrl,omitempty"` // empty = sold out or otherwise unbookable
	Format     string `json:"format,omitempty"`     // e.g. "35mm", "Relaxed screening"
}

// BookingKey returns the identity of the underlying booking. Two screenings
// with the same key describe the same showing: the booking URL when one
// exists, otherwise venue+date+time+title.
func (s Screening) BookingKey() string {
	if s.BookingURL != "" {
		return s.BookingURL
	}
	return s.Venue + "|" + s.Date + "|" + s.Time + "|" + s.Title
}

// SourceBreakdownEntry reports, for one orchestrator run, how many screenings
// a source contributed or why it failed. It lives only for the duration of
// the run that produced it.
type SourceBreakdownEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// RunResult is the envelope an orchestrator run produces: the merged catalog
// plus the per-source breakdown.
type RunResult struct {
	RunID      string                 `json:"runId"`
	Screenings []Screening            `json:"screenings"`
	Breakdown  []SourceBreakdownEntry `json:"breakdown"`
	DurationMs int64                  `json:"durationMs"`
}
