package crawler

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/amosWeiskopf/crawlscribe/pkg/utils"
)

// DiscoverLinks fetches pageURL and returns the same-host links it contains,
// in first-seen order without duplicates. A failed fetch is logged and yields
// no links.
func (c *Crawler) DiscoverLinks(ctx context.Context, pageURL string) []string {
	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		c.logger.Warn("Could not access page", zap.String("url", pageURL), zap.Error(err))
		return nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		c.logger.Warn("Could not parse page URL", zap.String("url", pageURL), zap.Error(err))
		return nil
	}

	links, err := c.sameHostLinks(body, base)
	if err != nil {
		c.logger.Warn("Could not parse page HTML", zap.String("url", pageURL), zap.Error(err))
		return nil
	}

	c.logger.Debug("Discovered links", zap.String("url", pageURL), zap.Int("count", len(links)))
	return links
}

// sameHostLinks resolves every anchor href against the page origin and keeps
// the valid ones on exactly the same host.
func (c *Crawler) sameHostLinks(body []byte, page *url.URL) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	origin := utils.Origin(page)
	seen := make(map[string]bool)
	var links []string

	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if link, ok := c.resolve(origin, attr.Val); ok && !seen[link] {
					seen[link] = true
					links = append(links, link)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			f(child)
		}
	}
	f(doc)

	return links, nil
}

func (c *Crawler) resolve(origin *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	abs := origin.ResolveReference(ref)
	abs.Fragment = ""
	abs.RawFragment = ""
	if !strings.EqualFold(abs.Host, origin.Host) {
		return "", false
	}

	link := abs.String()
	if !c.validator.IsValid(link) {
		return "", false
	}
	return link, true
}
