package assets

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

const googleResultClass = "H8Rx8c"

var desktopUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// GoogleImages scrapes the Google image results page.
type GoogleImages struct {
	endpoint string
	client   *http.Client
	pick     func(n int) int
}

func NewGoogleImages(endpoint string, client *http.Client) *GoogleImages {
	if endpoint == "" {
		endpoint = "https://www.google.com"
	}
	return &GoogleImages{endpoint: strings.TrimRight(endpoint, "/"), client: client, pick: rand.IntN}
}

func (g *GoogleImages) Search(ctx context.Context, query string) (string, error) {
	if g == nil {
		return "", errNotConfigured
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("tbm", "isch")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"/search?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", desktopUserAgents[g.pick(len(desktopUserAgents))])
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google images: status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("google images: parse: %w", err)
	}
	links := collectResultImages(doc)
	if len(links) == 0 {
		return "", errNoResults
	}
	return links[g.pick(len(links))], nil
}

// collectResultImages returns img src or data-src values nested under result containers.
func collectResultImages(root *html.Node) []string {
	var links []string
	var walk func(n *html.Node, inResult bool)
	walk = func(n *html.Node, inResult bool) {
		if n.Type == html.ElementNode {
			if hasClass(n, googleResultClass) {
				inResult = true
			}
			if inResult && n.Data == "img" {
				if link := imageSource(n); link != "" {
					links = append(links, link)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inResult)
		}
	}
	walk(root, false)
	return links
}

func imageSource(n *html.Node) string {
	var src, dataSrc string
	for _, a := range n.Attr {
		switch a.Key {
		case "src":
			src = a.Val
		case "data-src":
			dataSrc = a.Val
		}
	}
	if isHTTPURL(src) {
		return src
	}
	if isHTTPURL(dataSrc) {
		return dataSrc
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
