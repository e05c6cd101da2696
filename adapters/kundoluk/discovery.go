package kundoluk

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"gokundoluk/domain/core"
	"gokundoluk/domain/gradebook"

	"github.com/PuerkitoBio/goquery"
)

const journalPath = "/journal2"

var errNoSubjectNav = errors.New("subject navigation not found (expired session?)")

// ListSubjects returns the subjects published for a class and quarter.
// Any failure here is fatal for the class and wraps core.ErrDiscovery.
func (c *Client) ListSubjects(ctx context.Context, class gradebook.ClassRef, quarter int) ([]gradebook.SubjectLink, error) {
	query := url.Values{}
	query.Set("class", strconv.Itoa(class.ID))
	query.Set("quarter", strconv.Itoa(quarter))

	doc, err := c.document(ctx, c.baseURL.String()+journalPath, query)
	if err != nil {
		return nil, core.NewDiscoveryError(class.Label, quarter, err)
	}

	links, err := c.parseSubjectNav(doc)
	if err != nil {
		return nil, core.NewDiscoveryError(class.Label, quarter, err)
	}

	c.logger.Debug("Class %s quarter %d lists %d subjects", class.Label, quarter, len(links))
	return links, nil
}

func (c *Client) parseSubjectNav(doc *goquery.Document) ([]gradebook.SubjectLink, error) {
	nav := doc.Find("ul.uk-subnav").First()
	if nav.Length() == 0 {
		return nil, errNoSubjectNav
	}

	var links []gradebook.SubjectLink
	var resolveErr error
	nav.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		name := cleanText(a.Text())
		if !ok || strings.TrimSpace(href) == "" || name == "" {
			return true
		}
		abs, err := c.resolve(href)
		if err != nil {
			resolveErr = err
			return false
		}
		links = append(links, gradebook.SubjectLink{Name: name, URL: abs})
		return true
	})
	if resolveErr != nil {
		return nil, resolveErr
	}
	return links, nil
}
