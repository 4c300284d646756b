package discovery

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/veranemoloko/mdk-downloader/internal/validation"
)

var versionPrefix = regexp.MustCompile(`^\d+\.\d+\.\d+`)

// ExtractVersions returns the fine identifiers listed on a listing page.
//
// The first cell of every table row is taken when its text starts with a
// dotted triple and the whole text is usable as a path segment. Only if no row qualifies, hyperlink targets are searched for
// "<coarse>-<x.y.z>"; those matches are deduplicated in first-seen order.
func ExtractVersions(r io.Reader, coarse string) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	if versions := tableVersions(doc); len(versions) > 0 {
		return versions, nil
	}

	return linkVersions(doc, coarse), nil
}

func tableVersions(doc *html.Node) []string {
	var versions []string
	walk(doc, func(n *html.Node) {
		if !isElement(n, atom.Tr) {
			return
		}
		cell := firstDescendant(n, atom.Td)
		if cell == nil {
			return
		}
		text := strippedText(cell)
		if versionPrefix.MatchString(text) && validation.ValidateBuildID(text) == nil {
			versions = append(versions, text)
		}
	})
	return versions
}

func linkVersions(doc *html.Node, coarse string) []string {
	re := regexp.MustCompile(regexp.QuoteMeta(coarse) + `-(\d+\.\d+\.\d+)`)

	seen := make(map[string]struct{})
	var versions []string
	walk(doc, func(n *html.Node) {
		if !isElement(n, atom.A) {
			return
		}
		href, ok := attr(n, "href")
		if !ok {
			return
		}
		match := re.FindStringSubmatch(href)
		if match == nil {
			return
		}
		if _, dup := seen[match[1]]; dup {
			return
		}
		seen[match[1]] = struct{}{}
		versions = append(versions, match[1])
	})
	return versions
}

// walk visits n and its descendants in document order.
func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func firstDescendant(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, a) {
			return c
		}
		if found := firstDescendant(c, a); found != nil {
			return found
		}
	}
	return nil
}

// strippedText concatenates every text node below n, each trimmed.
func strippedText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(c.Data))
		}
	})
	return b.String()
}

func isElement(n *html.Node, a atom.Atom) bool {
	return n.Type == html.ElementNode && n.DataAtom == a
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
