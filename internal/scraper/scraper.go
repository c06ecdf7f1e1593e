// Package scraper guesses a product's name, price and image from a URL so a
// draft item can be prefilled. It is strictly best-effort: any field may be
// missing, there are no retries and no accuracy contract — absent fields are
// filled in by the user.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// maxBodyBytes caps how much of a product page is read.
const maxBodyBytes = 1 << 20

// ProductGuess is a best-effort extraction from a product page.
type ProductGuess struct {
	Name       string `json:"name,omitempty"`
	PriceCents int64  `json:"price_cents,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
}

// Empty reports whether nothing useful was extracted.
func (g *ProductGuess) Empty() bool {
	return g.Name == "" && g.PriceCents == 0 && g.ImageURL == ""
}

// Scraper fetches and parses product pages.
type Scraper struct {
	client *http.Client
	logger *logrus.Logger
}

// New creates a Scraper. A nil client gets a default with a short timeout.
func New(client *http.Client, logger *logrus.Logger) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Scraper{client: client, logger: logger}
}

// Fetch downloads the page and extracts whatever product hints it can find.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (*ProductGuess, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid product URL %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product page returned status %d", resp.StatusCode)
	}

	guess := Parse(io.LimitReader(resp.Body, maxBodyBytes))

	s.logger.WithFields(logrus.Fields{
		"url":         u.Host,
		"found_name":  guess.Name != "",
		"found_price": guess.PriceCents > 0,
		"found_image": guess.ImageURL != "",
	}).Debug("Scraped product page")

	return guess, nil
}

// Parse extracts product hints from an HTML document. Preference order:
// Open Graph metadata, then itemprop microdata, then the page title.
func Parse(r io.Reader) *ProductGuess {
	guess := &ProductGuess{}

	doc, err := html.Parse(r)
	if err != nil {
		return guess
	}

	var title string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				key := attr(n, "property")
				if key == "" {
					key = attr(n, "name")
				}
				if key == "" {
					key = attr(n, "itemprop")
				}
				content := strings.TrimSpace(attr(n, "content"))
				if content == "" {
					break
				}
				switch key {
				case "og:title", "twitter:title":
					if guess.Name == "" {
						guess.Name = content
					}
				case "og:image", "twitter:image":
					if guess.ImageURL == "" {
						guess.ImageURL = content
					}
				case "og:price:amount", "product:price:amount", "price":
					if guess.PriceCents == 0 {
						guess.PriceCents = parsePriceCents(content)
					}
				}
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if guess.Name == "" {
		guess.Name = title
	}
	return guess
}

var priceRe = regexp.MustCompile(`(\d{1,3}(?:[, ]\d{3})+|\d+)(?:[.,](\d{1,2}))?`)

// parsePriceCents turns price-looking text ("129.99", "$1,299", "1 299,00")
// into cents. Unparseable input yields 0, the unknown-price sentinel.
func parsePriceCents(s string) int64 {
	m := priceRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	whole := strings.NewReplacer(",", "", " ", "").Replace(m[1])
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0
	}
	cents := int64(0)
	if m[2] != "" {
		frac := m[2]
		if len(frac) == 1 {
			frac += "0"
		}
		c, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0
		}
		cents = c
	}
	return units*100 + cents
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
