package scrape

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	pointsRE   = regexp.MustCompile(`(\d+)\s+points?`)
	commentsRE = regexp.MustCompile(`(\d+)\s+comments?`)
	pTagRE     = regexp.MustCompile(`</?p>`)
)

// frontPageItem is the raw extraction of one ranked row, before it is
// promoted to a PostRecord by a specific variant.
type frontPageItem struct {
	ID           int
	Title        string
	URL          string
	Points       int
	CommentCount int
	Author       string
}

// HN renders "N comments" with a non-breaking space, which Go's \s does
// not match.
func normalizeSpaces(text string) string {
	return strings.ReplaceAll(text, "\u00a0", " ")
}

func parsePoints(text string) int {
	m := pointsRE.FindStringSubmatch(normalizeSpaces(text))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// parseComments reads the trailing subtext link. "discuss" means the post
// has no comments yet.
func parseComments(text string) int {
	if strings.Contains(strings.ToLower(text), "discuss") {
		return 0
	}
	m := commentsRE.FindStringSubmatch(normalizeSpaces(text))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// parseFrontPage extracts up to limit ranked rows from a front-page
// document. Rows without a numeric id are skipped; missing fields degrade to
// zero values rather than failing the row.
func parseFrontPage(doc *goquery.Document, limit int) []frontPageItem {
	var items []frontPageItem
	doc.Find("tr.athing").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if len(items) >= limit {
			return false
		}
		idAttr, _ := row.Attr("id")
		id, err := strconv.Atoi(idAttr)
		if err != nil {
			return true
		}

		titleLink := row.Find("span.titleline a").First()
		href, _ := titleLink.Attr("href")

		subtext := row.Next().Find("td.subtext")
		items = append(items, frontPageItem{
			ID:           id,
			Title:        strings.TrimSpace(titleLink.Text()),
			URL:          href,
			Points:       parsePoints(subtext.Find("span.score").Text()),
			CommentCount: parseComments(subtext.Find("a").Last().Text()),
			Author:       strings.TrimSpace(subtext.Find("a.hnuser").First().Text()),
		})
		return true
	})
	return items
}

// parseFirstComment extracts the first top-level comment of a discussion
// page. Returns empty strings when the tree is empty.
func parseFirstComment(doc *goquery.Document) (author, text string) {
	row := doc.Find(".comment-tree tr.comtr").First()
	if row.Length() == 0 {
		return "", ""
	}
	author = strings.TrimSpace(row.Find("a.hnuser").First().Text())
	comment := row.Find("span.commtext").First()
	if comment.Length() == 0 {
		comment = row.Find(".comment").First()
	}
	text = strings.TrimSpace(comment.Text())
	return author, text
}

// cleanCommentHTML normalizes the raw HTML comment body returned by the
// Firebase API: paragraph breaks become newlines, entities are unescaped.
func cleanCommentHTML(s string) string {
	s = strings.ReplaceAll(s, "<p>", "\n")
	s = pTagRE.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}
