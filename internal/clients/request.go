package clients

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/webp"
	"golang.org/x/net/html/charset"
	"resty.dev/v3"
)

type ClientRequest struct {
	Client *resty.Client
}

// FetchError reports a single source image that could not be retrieved or
// decoded. Renderers recover from it by skipping that image.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// SourceImage is one fetched and decoded remote image. It lives only for the
// renderer invocation that fetched it.
type SourceImage struct {
	URL    string
	Image  image.Image
	Raw    []byte
	Width  int
	Height int
}

// FetchImage downloads rawURL and decodes the body. A single GET with no
// retries; the caller decides whether a failure skips the image or aborts
// the whole render.
func (c *ClientRequest) FetchImage(rawURL string) (*SourceImage, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("not an http(s) URL")}
	}

	resp, err := c.Client.R().Get(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("unexpected status %s", resp.Status())}
	}

	raw := new(bytes.Buffer)
	if _, err := raw.ReadFrom(resp.Body); err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("failed to read image data: %w", err)}
	}

	img, _, err := image.Decode(bytes.NewReader(raw.Bytes()))
	if err != nil && strings.Contains(resp.Header().Get("Content-Type"), "webp") {
		img, err = webp.Decode(bytes.NewReader(raw.Bytes()))
	}
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("failed to decode image: %w", err)}
	}

	bounds := img.Bounds()
	return &SourceImage{
		URL:    rawURL,
		Image:  img,
		Raw:    raw.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// ScrapeTarget selects which attribute of which elements to harvest from a
// remote page.
type ScrapeTarget struct {
	RawURL   string `json:"url"`
	Selector string `json:"selector"`
	Attr     string `json:"attr"`
}

// CollectImageLinks fetches the page at target.RawURL and returns the
// absolute URLs found in the selected attribute. Relative links are resolved
// against the page URL; unresolvable ones are skipped.
func (c *ClientRequest) CollectImageLinks(target *ScrapeTarget) ([]string, error) {
	selector := target.Selector
	if selector == "" {
		selector = "img"
	}
	attr := target.Attr
	if attr == "" {
		attr = "src"
	}

	response, err := c.Client.R().Get(target.RawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer response.Body.Close()

	contentType := response.Header().Get("Content-Type")
	bodyReader, err := charset.NewReader(response.Body, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to create charset reader: %w", err)
	}

	document, err := goquery.NewDocumentFromReader(bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML document: %w", err)
	}

	var links []string
	document.Find(selector).Each(func(i int, s *goquery.Selection) {
		src, exists := s.Attr(attr)
		if !exists {
			return
		}
		resolved, err := completeURL(src, target.RawURL)
		if err != nil {
			log.Warn().Str("src", src).Err(err).Msg("skipping unresolvable image link")
			return
		}
		links = append(links, resolved)
	})

	log.Info().Int("count", len(links)).Str("page", target.RawURL).Msg("collected image links")
	return links, nil
}

func completeURL(inputURL, pageURL string) (string, error) {
	if inputURL == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	parsedURL, err := url.Parse(inputURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.IsAbs() {
		return inputURL, nil
	}
	baseURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}
	if baseURL.Scheme == "" {
		baseURL.Scheme = "https"
	}
	return baseURL.ResolveReference(parsedURL).String(), nil
}
