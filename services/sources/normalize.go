package sources

import (
	"strings"
	"time"

	"cinescout/models"
)

// LocalDate and LocalTime are the canonical venue-local formats every
// adapter emits.
const (
	LocalDate = "2006-01-02"
	LocalTime = "15:04"
)

// SplitLocal converts a source-reported instant into the venue-local civil
// date and clock time. Adapters call this before a record becomes a
// Screening; nothing downstream carries a timezone.
func SplitLocal(t time.Time, venue *time.Location) (date, clock string) {
	local := t.In(venue)
	return local.Format(LocalDate), local.Format(LocalTime)
}

// DedupeScreenings removes duplicate bookings within one source's output,
// keeping the first occurrence in order. Venue sites frequently render the
// same booking twice (desktop and mobile markup, or a listing repeated under
// two strands); identity follows Screening.BookingKey.
func DedupeScreenings(in []models.Screening) []models.Screening {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Screening, 0, len(in))
	for _, s := range in {
		key := s.BookingKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// CleanTitle trims the decorations venue sites wrap around a film title
// without touching its casing or internal punctuation: surrounding
// whitespace, and trailing strand annotations like "(35mm)" or "+ Q&A"
// stay — those belong to Format, which adapters fill separately — but
// leading/trailing whitespace and non-breaking spaces go.
func CleanTitle(title string) string {
	title = strings.ReplaceAll(title, " ", " ")
	return strings.TrimSpace(title)
}

// ValidScreening reports whether a parsed record satisfies the Screening
// invariants; adapters drop invalid records rather than emit them.
func ValidScreening(s models.Screening) bool {
	if s.Title == "" || s.Venue == "" {
		return false
	}
	if _, err := time.Parse(LocalDate, s.Date); err != nil {
		return false
	}
	if _, err := time.Parse(LocalTime, s.Time); err != nil {
		return false
	}
	return true
}
