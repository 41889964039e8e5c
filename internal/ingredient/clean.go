package ingredient

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanDescription reduces a meal description that may contain HTML to
// plain text, one line per block element.
func CleanDescription(description string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, iframe, noscript").Remove()

	doc.Find("br, p, li, div, tr, h1, h2, h3, h4, h5, h6").Each(func(i int, s *goquery.Selection) {
		s.AfterHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
