package decoder

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var strippedElements = "script, iframe, object, embed, frame, frameset"

// SanitizeHTML drops active content from a message body before it is handed
// to the dashboard. Documents that fail to parse are returned empty.
func SanitizeHTML(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find(strippedElements).Remove()
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			var unsafe []string
			for _, attr := range node.Attr {
				name := strings.ToLower(attr.Key)
				value := strings.ToLower(strings.TrimSpace(attr.Val))
				if strings.HasPrefix(name, "on") {
					unsafe = append(unsafe, attr.Key)
					continue
				}
				if (name == "href" || name == "src" || name == "action") && strings.HasPrefix(value, "javascript:") {
					unsafe = append(unsafe, attr.Key)
				}
			}
			for _, key := range unsafe {
				s.RemoveAttr(key)
			}
		}
	})

	var out string
	if strings.Contains(strings.ToLower(html), "<html") {
		out, err = doc.Html()
	} else {
		out, err = doc.Find("body").Html()
	}
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}
