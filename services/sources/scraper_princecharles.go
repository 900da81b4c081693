package sources

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly"

	"cinescout/models"
	"cinescout/utils"
)

const (
	princeCharlesVenue          = "Prince Charles Cinema"
	princeCharlesDefaultBaseURL = "https://princecharlescinema.com"
)

// PrinceCharlesScraper extracts screenings from the Prince Charles what's-on
// page. The page renders every upcoming performance as a list item carrying
// the film and start instant in data attributes, with booking links and
// format notes in child elements.
type PrinceCharlesScraper struct {
	baseURL    string
	httpClient *http.Client
	venueTime  *time.Location
}

// NewPrinceCharlesScraper constructs the scraper. baseURL is optional and
// exists for tests; loc defaults to the venue's timezone when nil.
func NewPrinceCharlesScraper(client *http.Client, baseURL string, loc *time.Location) *PrinceCharlesScraper {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	if baseURL == "" {
		baseURL = princeCharlesDefaultBaseURL
	}
	if loc == nil {
		loc = venueLocation()
	}
	return &PrinceCharlesScraper{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
		venueTime:  loc,
	}
}

func (s *PrinceCharlesScraper) Name() string {
	return "princecharles"
}

func (s *PrinceCharlesScraper) Fetch(ctx context.Context) ([]models.Screening, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(colly.UserAgent("cinescout/1.0"))
	if s.httpClient.Transport != nil {
		c.WithTransport(s.httpClient.Transport)
	}
	c.SetRequestTimeout(s.httpClient.Timeout)

	var (
		screenings []models.Screening
		skipped    int
		fetchErr   error
	)

	c.OnHTML("li.screening", func(e *colly.HTMLElement) {
		start, err := time.Parse(time.RFC3339, e.Attr("data-start"))
		if err != nil {
			skipped++
			return
		}
		date, clock := SplitLocal(start, s.venueTime)

		year, _ := strconv.Atoi(e.Attr("data-year"))

		bookingURL := ""
		if !strings.Contains(e.Attr("class"), "sold-out") {
			href := e.ChildAttr("a.book", "href")
			if resolved, err := utils.ResolveBookingURL(s.baseURL, href); err == nil {
				bookingURL = resolved
			}
		}

		rec := models.Screening{
			Title:      CleanTitle(e.ChildText("a.film-title")),
			Year:       year,
			Date:       date,
			Time:       clock,
			Venue:      princeCharlesVenue,
			BookingURL: bookingURL,
			Format:     CleanTitle(e.ChildText("span.format")),
		}
		if !ValidScreening(rec) {
			skipped++
			return
		}
		screenings = append(screenings, rec)
	})

	c.OnError(func(_ *colly.Response, err error) {
		if fetchErr == nil {
			fetchErr = err
		}
	})

	if err := c.Visit(s.baseURL + "/whats-on/"); err != nil {
		return nil, fmt.Errorf("princecharles: fetch what's-on: %w", err)
	}
	c.Wait()
	if fetchErr != nil {
		return nil, fmt.Errorf("princecharles: fetch what's-on: %w", fetchErr)
	}

	if skipped > 0 {
		log.Printf("[princecharles] dropped %d malformed listing(s)", skipped)
	}
	return DedupeScreenings(screenings), nil
}

// venueLocation resolves the timezone UK venues report civil times in. A
// host without tzdata falls back to UTC, which is wrong for a real run but
// keeps the adapter usable.
func venueLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		log.Printf("[sources] Europe/London unavailable, falling back to UTC: %v", err)
		return time.UTC
	}
	return loc
}

func init() {
	Register("princecharles", func(client *http.Client) Source {
		return NewPrinceCharlesScraper(client, "", nil)
	})
}
