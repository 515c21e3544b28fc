package scrape

import (
	"context"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/mfriesen/tapings/internal/config"
	"github.com/mfriesen/tapings/internal/fetcher"
	"github.com/mfriesen/tapings/internal/types"
)

// The lineups page encodes each show as a named anchor inside a title
// paragraph, followed by a run of paragraphs holding one listing line
// per <br>-separated row. A footer paragraph ends the page.
const lineupFooterPrefix = "Get the day's lineups"

// lineupLineRe matches one listing line: two-letter weekday, short
// month/day, then a comma-separated guest list.
var lineupLineRe = regexp.MustCompile(`^([A-Za-z]{2}) (\d{1,2}/\d{1,2}):\s*(.+)$`)

// showTitleRe strips leading markup debris (bullets, whitespace) from
// an anchor's enclosing text, keeping everything from the first
// capital letter on.
var showTitleRe = regexp.MustCompile(`^[^A-Z]*([A-Z].*)$`)

// FetchLineups retrieves the shared listings page and extracts every
// show's guest schedule.
func FetchLineups(ctx context.Context, f fetcher.Fetcher, cfg config.ScrapeConfig) ([]types.ShowGuestSchedule, error) {
	pageHTML, err := f.Fetch(ctx, &fetcher.PageRequest{
		URL:          cfg.LineupsURL,
		WaitSelector: cfg.LineupsReadySelector,
	})
	if err != nil {
		return nil, err
	}
	return ExtractLineups(pageHTML)
}

// ExtractLineups parses the rendered listings page into per-show guest
// schedules. Shows that yield no parseable lines are omitted entirely.
func ExtractLineups(pageHTML string) ([]types.ShowGuestSchedule, error) {
	doc, err := htmlquery.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return nil, &types.ParseError{Selector: "//a[@name]", Err: err}
	}

	anchors, err := htmlquery.QueryAll(doc, "//a[@name]")
	if err != nil {
		return nil, &types.ParseError{Selector: "//a[@name]", Err: err}
	}

	var results []types.ShowGuestSchedule

	for _, anchor := range anchors {
		title := showTitle(anchor)
		entries := collectEntries(anchor)
		if len(entries) > 0 {
			results = append(results, types.ShowGuestSchedule{Show: title, Entries: entries})
		}
	}

	return results, nil
}

// collectEntries walks the paragraph blocks following a show's anchor
// and extracts every line that matches the listing pattern. Traversal
// ends at the first non-paragraph sibling, empty block, or footer.
func collectEntries(anchor *html.Node) []types.ShowGuestEntry {
	var entries []types.ShowGuestEntry

	node := nextElement(closestParagraph(anchor))
	for node != nil && node.Data == "p" {
		for _, line := range paragraphLines(node) {
			m := lineupLineRe.FindStringSubmatch(line)
			if m == nil {
				// Promotional and blank lines; expected
				continue
			}
			guests := splitGuests(m[3])
			if len(guests) > 0 {
				entries = append(entries, types.ShowGuestEntry{Date: m[2], Guests: guests})
			}
		}

		node = nextElement(node)
		if node == nil {
			break
		}
		text := strings.TrimSpace(htmlquery.InnerText(node))
		if text == "" || strings.HasPrefix(text, lineupFooterPrefix) {
			break
		}
	}

	return entries
}

// showTitle derives a show's display title from its anchor's enclosing
// text.
func showTitle(anchor *html.Node) string {
	text := anchor.Data
	if anchor.Parent != nil {
		text = htmlquery.InnerText(anchor.Parent)
	}
	text = strings.TrimSpace(text)
	if m := showTitleRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// splitGuests splits a comma-separated guest list, trimming each name
// and dropping empties.
func splitGuests(raw string) []string {
	var guests []string
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			guests = append(guests, g)
		}
	}
	return guests
}

// paragraphLines recovers the individual listing lines of a paragraph
// block by flushing accumulated text at every <br>.
func paragraphLines(p *html.Node) []string {
	var lines []string
	var buf strings.Builder

	flush := func() {
		lines = append(lines, strings.TrimSpace(buf.String()))
		buf.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "br" {
				flush()
				continue
			}
			if c.Type == html.TextNode {
				buf.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(p)
	flush()

	return lines
}

// closestParagraph returns the nearest <p> ancestor, or the node's
// parent when none exists.
func closestParagraph(n *html.Node) *html.Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && cur.Data == "p" {
			return cur
		}
	}
	return n.Parent
}

// nextElement returns the next element sibling, skipping text and
// comment nodes.
func nextElement(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.NextSibling; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}
