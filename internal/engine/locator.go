package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/law-makers/pricecompare/internal/profile"
)

// Containers is the product node set chosen for a page
type Containers struct {
	Nodes    []*html.Node
	Query    string // winning container selector, empty for the fallback scan
	Matched  int    // raw matches of the winning selector
	Fallback bool
}

// LocateContainers evaluates every container candidate and keeps the one with
// the most plausible nodes; ties go to the better-ranked candidate. When no
// candidate yields a plausible node, a scan over every element is used.
func LocateContainers(ec *ExtractionContext) Containers {
	root := ec.Doc.Selection.Get(0)
	bounds := ec.Profile.TextLength

	var best Containers
	for _, q := range ec.Profile.Containers {
		group, err := cascadia.ParseGroup(q.Selector)
		if err != nil {
			ec.Logger.Debug().Str("code", string(ErrCodeCandidateMiss)).Str("query", q.Selector).Err(err).Msg("Container query rejected")
			continue
		}
		matches := cascadia.QueryAll(root, group)
		plausible := make([]*html.Node, 0, len(matches))
		for _, n := range matches {
			if isPlausible(n, bounds) {
				plausible = append(plausible, n)
			}
		}

		ec.Logger.Debug().
			Str("query", q.Selector).
			Int("matches", len(matches)).
			Int("plausible", len(plausible)).
			Msg("Container candidate")

		if len(plausible) > len(best.Nodes) {
			best = Containers{Nodes: plausible, Query: q.Selector, Matched: len(matches)}
		}
	}
	if len(best.Nodes) > 0 {
		return best
	}

	nodes := scanContainers(root, bounds)
	ec.Logger.Debug().Int("plausible", len(nodes)).Msg("Container fallback scan")
	return Containers{Nodes: nodes, Matched: len(nodes), Fallback: true}
}

// isPlausible reports whether n looks like one product card: it holds an image,
// is or holds a link, and its text length is within bounds.
func isPlausible(n *html.Node, bounds profile.IntRange) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if !isLink(n) && findFirst(n, isLink) == nil {
		return false
	}
	if findFirst(n, isImage) == nil {
		return false
	}
	return bounds.Contains(utf8.RuneCountInString(nodeText(n)))
}

// scanContainers finds plausible elements anywhere in the document. A card
// nested in plausible wrappers is reported once, as the outermost wrapper that
// still holds no other card.
func scanContainers(root *html.Node, bounds profile.IntRange) []*html.Node {
	plausible := make(map[*html.Node]bool)
	var order []*html.Node
	walkElements(root, func(n *html.Node) {
		if n.DataAtom == atom.Body || n.DataAtom == atom.Html {
			return
		}
		if isPlausible(n, bounds) {
			plausible[n] = true
			order = append(order, n)
		}
	})

	// cards counts innermost plausible nodes per subtree
	cards := make(map[*html.Node]int)
	var count func(n *html.Node) (int, bool)
	count = func(n *html.Node) (int, bool) {
		total, nested := 0, false
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			k, has := count(c)
			total += k
			nested = nested || has
		}
		if plausible[n] {
			if !nested {
				total++
			}
			nested = true
		}
		cards[n] = total
		return total, nested
	}
	count(root)

	seen := make(map[*html.Node]bool)
	var out []*html.Node
	for _, n := range order {
		if cards[n] != 1 || hasPlausibleDescendant(n, plausible) {
			continue
		}
		top := n
		for p := n.Parent; p != nil && cards[p] == 1; p = p.Parent {
			if plausible[p] {
				top = p
			}
		}
		if !seen[top] {
			seen[top] = true
			out = append(out, top)
		}
	}
	return out
}

func hasPlausibleDescendant(n *html.Node, plausible map[*html.Node]bool) bool {
	return findFirst(n, func(c *html.Node) bool { return plausible[c] }) != nil
}

func isLink(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.A {
		return false
	}
	href, ok := attr(n, "href")
	return ok && strings.TrimSpace(href) != ""
}

func isImage(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Img
}

// findFirst returns the first descendant of n (excluding n) matching fn
func findFirst(n *html.Node, fn func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if fn(c) {
			return c
		}
		if found := findFirst(c, fn); found != nil {
			return found
		}
	}
	return nil
}

func walkElements(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if c.DataAtom == atom.Script || c.DataAtom == atom.Style || c.DataAtom == atom.Noscript {
				continue
			}
			fn(c)
		}
		walkElements(c, fn)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// nodeText is the collapsed visible text of n
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style || n.DataAtom == atom.Noscript {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapse(b.String())
}

// textNodes returns the collapsed, non-empty text nodes under n in order
func textNodes(n *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode {
			if t := collapse(n.Data); t != "" {
				out = append(out, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
