package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"cinescout/models"
	"cinescout/services/pagefetch"
)

const (
	rioVenue          = "Rio Cinema"
	rioDefaultBaseURL = "https://riocinema.org.uk"

	// The Rio API allows a handful of concurrent page requests; more gets
	// the client throttled.
	rioPageConcurrency = 3
)

// rioListing is one screening as the Rio's listings API reports it. Start is
// RFC3339 with the venue's UTC offset.
type rioListing struct {
	Title      string `json:"title"`
	Year       int    `json:"year"`
	Start      string `json:"start"`
	BookingURL string `json:"bookingUrl"`
	Format     string `json:"format"`
	SoldOut    bool   `json:"soldOut"`
}

type rioPage struct {
	Listings []rioListing `json:"listings"`
}

// RioScraper reads the Rio's paginated listings API. The API exposes no page
// count, so pages are fetched until one comes back empty. An incomplete
// enumeration (a page that failed both attempts) fails the whole fetch: a
// partial catalog would silently under-report the venue.
type RioScraper struct {
	baseURL    string
	httpClient *http.Client
	venueTime  *time.Location
}

func NewRioScraper(client *http.Client, baseURL string, loc *time.Location) *RioScraper {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	if baseURL == "" {
		baseURL = rioDefaultBaseURL
	}
	if loc == nil {
		loc = venueLocation()
	}
	return &RioScraper{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
		venueTime:  loc,
	}
}

func (s *RioScraper) Name() string {
	return "rio"
}

func (s *RioScraper) Fetch(ctx context.Context) ([]models.Screening, error) {
	listings, failed := pagefetch.FetchUntilEmpty(ctx, 1, rioPageConcurrency, s.fetchPage)
	if err := pagefetch.ErrIncomplete("rio listings", failed); err != nil {
		return nil, err
	}

	var (
		screenings []models.Screening
		skipped    int
	)
	for _, l := range listings {
		start, err := time.Parse(time.RFC3339, l.Start)
		if err != nil {
			skipped++
			continue
		}
		date, clock := SplitLocal(start, s.venueTime)

		bookingURL := l.BookingURL
		if l.SoldOut {
			bookingURL = ""
		}

		rec := models.Screening{
			Title:      CleanTitle(l.Title),
			Year:       l.Year,
			Date:       date,
			Time:       clock,
			Venue:      rioVenue,
			BookingURL: bookingURL,
			Format:     CleanTitle(l.Format),
		}
		if !ValidScreening(rec) {
			skipped++
			continue
		}
		screenings = append(screenings, rec)
	}

	if skipped > 0 {
		log.Printf("[rio] dropped %d malformed listing(s)", skipped)
	}
	return DedupeScreenings(screenings), nil
}

func (s *RioScraper) fetchPage(ctx context.Context, pageNumber int) ([]rioListing, error) {
	url := fmt.Sprintf("%s/api/listings?page=%d", s.baseURL, pageNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listings page %d: unexpected status %d", pageNumber, resp.StatusCode)
	}

	var page rioPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("listings page %d: decode: %w", pageNumber, err)
	}
	return page.Listings, nil
}

func init() {
	Register("rio", func(client *http.Client) Source {
		return NewRioScraper(client, "", nil)
	})
}
