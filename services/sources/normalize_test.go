package sources

import (
	"testing"
	"time"

	"cinescout/models"
)

func TestSplitLocalConvertsToVenueClock(t *testing.T) {
	bst := time.FixedZone("BST", 60*60)

	// A source reporting 17:30 UTC during British Summer Time is an 18:30
	// screening on the venue's clock.
	start := time.Date(2026, 7, 10, 17, 30, 0, 0, time.UTC)
	date, clock := SplitLocal(start, bst)
	if date != "2026-07-10" || clock != "18:30" {
		t.Fatalf("SplitLocal = (%q, %q), want (2026-07-10, 18:30)", date, clock)
	}

	// A late-evening UTC instant rolls into the next venue-local day.
	start = time.Date(2026, 7, 10, 23, 15, 0, 0, time.UTC)
	date, clock = SplitLocal(start, bst)
	if date != "2026-07-11" || clock != "00:15" {
		t.Fatalf("SplitLocal = (%q, %q), want (2026-07-11, 00:15)", date, clock)
	}
}

func TestDedupeScreenings(t *testing.T) {
	withURL := models.Screening{
		Title: "Possession", Date: "2026-09-12", Time: "18:30",
		Venue: "Rio Cinema", BookingURL: "https://example.com/book/1",
	}
	sameBookingDifferentFormat := withURL
	sameBookingDifferentFormat.Format = "35mm"

	noURL := models.Screening{Title: "Stalker", Date: "2026-09-13", Time: "20:00", Venue: "Rio Cinema"}
	noURLDuplicate := noURL
	noURLOtherTime := noURL
	noURLOtherTime.Time = "14:00"

	got := DedupeScreenings([]models.Screening{
		withURL, sameBookingDifferentFormat, noURL, noURLDuplicate, noURLOtherTime,
	})
	if len(got) != 3 {
		t.Fatalf("got %d screenings after dedupe, want 3", len(got))
	}
	if got[0].Format != "" {
		t.Fatalf("dedupe must keep the first occurrence, got format %q", got[0].Format)
	}
}

func TestValidScreening(t *testing.T) {
	valid := models.Screening{Title: "Playtime", Date: "2026-09-08", Time: "14:30", Venue: "Barbican"}

	tests := []struct {
		name   string
		mutate func(*models.Screening)
		want   bool
	}{
		{"well-formed", func(*models.Screening) {}, true},
		{"no booking url still valid", func(s *models.Screening) { s.BookingURL = "" }, true},
		{"missing title", func(s *models.Screening) { s.Title = "" }, false},
		{"missing venue", func(s *models.Screening) { s.Venue = "" }, false},
		{"bad date", func(s *models.Screening) { s.Date = "08/09/2026" }, false},
		{"bad time", func(s *models.Screening) { s.Time = "2pm" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			if got := ValidScreening(s); got != tt.want {
				t.Fatalf("ValidScreening = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCleanTitle(t *testing.T) {
	if got := CleanTitle("  Wild Strawberries "); got != "Wild Strawberries" {
		t.Fatalf("CleanTitle = %q", got)
	}
}
