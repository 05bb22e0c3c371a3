package estimator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Plausibility band for scraped figures. Zillow pages are full of unrelated
// dollar amounts; anything outside this band is noise.
const (
	scrapeRentMin = 500
	scrapeRentMax = 20000
)

// rentPatterns are tried in order of reliability. Each captures a dollar
// amount with optional thousands separators.
var rentPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"rent zestimate", regexp.MustCompile(`(?i)Rent\s+Zestimate[®™]?\s*[:\s]*\$?\s*([0-9,]+)`)},
	{"zestimate rent", regexp.MustCompile(`(?i)Zestimate[®™]?\s+Rent\s*[:\s]*\$?\s*([0-9,]+)`)},
	{"estimated rent", regexp.MustCompile(`(?i)Estimated\s+rent[:\s]*\$?\s*([0-9,]+)`)},
	{"monthly rent", regexp.MustCompile(`(?i)Monthly\s+rent[:\s]*\$?\s*([0-9,]+)`)},
	{"per month", regexp.MustCompile(`\$([0-9,]+)\s*/\s*mo`)},
	{"per month long", regexp.MustCompile(`\$([0-9,]+)\s*/\s*month`)},
	{"rent colon", regexp.MustCompile(`(?i)Rent\s*:\s*\$([0-9,]+)`)},
}

// contextualPattern is the last resort: any amount appearing after the word
// "rent".
var contextualPattern = regexp.MustCompile(`(?i)rent[^$]*\$([0-9,]+)`)

// ZillowClient fetches a property's listing page and extracts the rent
// estimate. Zillow has no public API; this reads the figure off the page
// the way a visitor would, and treats any blocking response as a miss so
// the estimate chain can move on.
type ZillowClient struct {
	httpClient *http.Client
	userAgent  string
}

func NewZillowClient(timeout time.Duration) *ZillowClient {
	return &ZillowClient{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	}
}

func (z *ZillowClient) FetchEstimate(ctx context.Context, req Request) (int, error) {
	query := strings.TrimSpace(fmt.Sprintf("%s %s %s %s", req.Address, req.City, req.State, req.Zipcode))
	url := "https://www.zillow.com/homes/" + strings.ReplaceAll(query, " ", "+") + "_rb/"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("User-Agent", z.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := z.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return 0, fmt.Errorf("request blocked (403)")
	case http.StatusTooManyRequests:
		return 0, fmt.Errorf("rate limited (429)")
	default:
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return 0, fmt.Errorf("reading page: %w", err)
	}
	page := string(body)

	lower := strings.ToLower(page)
	if strings.Contains(lower, "captcha") || strings.Contains(lower, "robot") {
		return 0, fmt.Errorf("bot detection page")
	}

	rent, ok := ParseRent(page)
	if !ok {
		return 0, fmt.Errorf("no rent figure found")
	}
	return rent, nil
}

// ParseRent scans page text for a rent figure, trying the labeled patterns
// first and a contextual scan last. When a pattern matches several amounts,
// the highest plausible one wins.
func ParseRent(page string) (int, bool) {
	for _, p := range rentPatterns {
		if rent, ok := highestPlausible(p.re.FindAllStringSubmatch(page, -1)); ok {
			return rent, true
		}
	}
	return highestPlausible(contextualPattern.FindAllStringSubmatch(page, -1))
}

func highestPlausible(matches [][]string) (int, bool) {
	best := 0
	for _, m := range matches {
		n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}
		if n >= scrapeRentMin && n <= scrapeRentMax && n > best {
			best = n
		}
	}
	return best, best > 0
}
