package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"cinescout/models"
)

const (
	barbicanVenue          = "Barbican"
	barbicanDefaultBaseURL = "https://www.barbican.org.uk"

	// The cinema programme lives behind the venue's general events GraphQL
	// endpoint; startsAt comes back in UTC regardless of the venue's clock.
	barbicanScreeningsQuery = `query CinemaScreenings($from: DateTime!) {
  cinemaScreenings(from: $from) {
    film { title releaseYear }
    startsAt
    bookingUrl
    soldOut
    attributes
  }
}`
)

type barbicanScreening struct {
	Film struct {
		Title       string `json:"title"`
		ReleaseYear int    `json:"releaseYear"`
	} `json:"film"`
	StartsAt   string   `json:"startsAt"`
	BookingURL string   `json:"bookingUrl"`
	SoldOut    bool     `json:"soldOut"`
	Attributes []string `json:"attributes"`
}

type barbicanResponse struct {
	Data struct {
		CinemaScreenings []barbicanScreening `json:"cinemaScreenings"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// BarbicanScraper queries the Barbican's GraphQL API for upcoming cinema
// screenings.
type BarbicanScraper struct {
	baseURL    string
	httpClient *http.Client
	venueTime  *time.Location
	now        func() time.Time
}

func NewBarbicanScraper(client *http.Client, baseURL string, loc *time.Location) *BarbicanScraper {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	if baseURL == "" {
		baseURL = barbicanDefaultBaseURL
	}
	if loc == nil {
		loc = venueLocation()
	}
	return &BarbicanScraper{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
		venueTime:  loc,
		now:        time.Now,
	}
}

func (s *BarbicanScraper) Name() string {
	return "barbican"
}

func (s *BarbicanScraper) Fetch(ctx context.Context) ([]models.Screening, error) {
	body, err := json.Marshal(map[string]any{
		"query": barbicanScreeningsQuery,
		"variables": map[string]any{
			"from": s.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("barbican: encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/graphql", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("barbican: query screenings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("barbican: unexpected status %d", resp.StatusCode)
	}

	var decoded barbicanResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("barbican: decode response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("barbican: graphql error: %s", decoded.Errors[0].Message)
	}

	var (
		screenings []models.Screening
		skipped    int
	)
	for _, raw := range decoded.Data.CinemaScreenings {
		start, err := time.Parse(time.RFC3339, raw.StartsAt)
		if err != nil {
			skipped++
			continue
		}
		date, clock := SplitLocal(start, s.venueTime)

		bookingURL := raw.BookingURL
		if raw.SoldOut {
			bookingURL = ""
		}

		rec := models.Screening{
			Title:      CleanTitle(raw.Film.Title),
			Year:       raw.Film.ReleaseYear,
			Date:       date,
			Time:       clock,
			Venue:      barbicanVenue,
			BookingURL: bookingURL,
			Format:     strings.Join(raw.Attributes, ", "),
		}
		if !ValidScreening(rec) {
			skipped++
			continue
		}
		screenings = append(screenings, rec)
	}

	if skipped > 0 {
		log.Printf("[barbican] dropped %d malformed screening(s)", skipped)
	}
	return DedupeScreenings(screenings), nil
}

func init() {
	Register("barbican", func(client *http.Client) Source {
		return NewBarbicanScraper(client, "", nil)
	})
}
