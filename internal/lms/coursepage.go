package lms

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ParseCourseIDs extracts the course ids from the hand-maintained config
// page. Anchors whose href is exactly "{baseURL}/courses/{id}" count;
// anything else on the page is ignored. Duplicate links collapse. Returns
// nil when the body has no matching anchors.
func ParseCourseIDs(body, baseURL string) ([]int, error) {
	pattern, err := regexp.Compile(
		fmt.Sprintf(`^%s/courses/([0-9]+)$`, regexp.QuoteMeta(strings.TrimRight(baseURL, "/"))))
	if err != nil {
		return nil, fmt.Errorf("building course URL pattern: %w", err)
	}

	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing config page body: %w", err)
	}

	seen := make(map[int]bool)
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "a" {
			for _, attr := range node.Attr {
				if attr.Key != "href" {
					continue
				}
				if match := pattern.FindStringSubmatch(attr.Val); match != nil {
					if id, err := strconv.Atoi(match[1]); err == nil {
						seen[id] = true
					}
				}
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	if len(seen) == 0 {
		return nil, nil
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}
