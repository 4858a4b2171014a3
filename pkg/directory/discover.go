package directory

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// groupRe matches the shape of a group code: 1-6 uppercase Latin/Cyrillic
// letters, hyphen, two digits, optional trailing letter (e.g. "ПМ-21А").
var groupRe = regexp.MustCompile(`[A-ZА-Я]{1,6}-\d{2}[A-ZА-Я]?`)

// guessConcurrency bounds brute-force probing, independently of the
// schedule client's own semaphore.
const guessConcurrency = 10

// discoverGroups tries each discovery strategy in order until one yields a
// non-empty result: the listing endpoint, then scraping the schedule page,
// then brute-force probing of generated candidates.
func (d *Directory) discoverGroups(ctx context.Context, allowGuess bool) []string {
	if groups, err := d.client.ListGroups(ctx); err == nil && len(groups) > 0 {
		return Normalize(groups)
	} else if err != nil {
		log.Printf("groups endpoint failed: %v", err)
	}

	if html, err := d.client.SchedulePage(ctx); err == nil {
		if groups := extractGroupsFromHTML(html); len(groups) > 0 {
			return groups
		}
	} else {
		log.Printf("schedule page fetch failed: %v", err)
	}

	if allowGuess {
		return d.guessGroups(ctx)
	}
	return nil
}

// extractGroupsFromHTML pulls group names out of the schedule page: option
// values of any <select> whose id or name mentions groups, or, if no such
// select exists, anything in the raw page that looks like a group code.
func extractGroupsFromHTML(html []byte) []string {
	var groups []string

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err == nil {
		doc.Find("select").Each(func(i int, sel *goquery.Selection) {
			id, _ := sel.Attr("id")
			name, _ := sel.Attr("name")
			if !strings.Contains(strings.ToLower(id), "group") && !strings.Contains(strings.ToLower(name), "group") {
				return
			}
			sel.Find("option").Each(func(j int, opt *goquery.Selection) {
				value, ok := opt.Attr("value")
				if !ok || strings.TrimSpace(value) == "" {
					value = opt.Text()
				}
				value = strings.TrimSpace(value)
				// Placeholder options like "Выберите группу" are not groups
				if value == "" || strings.Contains(strings.ToLower(value), "группа") {
					return
				}
				groups = append(groups, value)
			})
		})
	}

	if len(groups) == 0 {
		groups = groupRe.FindAllString(string(html), -1)
	}

	return Normalize(groups)
}

// candidateGroups generates brute-force candidates: every configured prefix
// crossed with years 10..59 and every configured suffix, capped by the
// configured limit.
func (d *Directory) candidateGroups() []string {
	var candidates []string
	for _, prefix := range d.cfg.GroupPrefixes {
		for year := 10; year < 60; year++ {
			for _, suffix := range d.cfg.GroupSuffixes {
				candidates = append(candidates, fmt.Sprintf("%s-%02d%s", prefix, year, suffix))
			}
		}
	}
	if limit := d.cfg.GuessLimit; limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// guessGroups probes every candidate against the schedule endpoint, keeping
// those that answer with a non-empty pair catalog.
func (d *Directory) guessGroups(ctx context.Context) []string {
	candidates := d.candidateGroups()
	httpClient := d.client.HTTPClient()

	sem := make(chan struct{}, guessConcurrency)
	var mu sync.Mutex
	var found []string

	var wg sync.WaitGroup
	for _, candidate := range candidates {
		wg.Add(1)
		go func(candidate string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if d.client.ProbeGroup(ctx, httpClient, candidate) {
				mu.Lock()
				found = append(found, candidate)
				mu.Unlock()
			}
		}(candidate)
	}
	wg.Wait()

	return Normalize(found)
}
