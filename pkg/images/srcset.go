package images

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"forumdump/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// DefaultScale applies to candidates without a usable density descriptor
const DefaultScale = 1.0

// Candidate is one entry of a srcset attribute
type Candidate struct {
	URL   string
	Scale float64
}

// ParseSrcset splits a srcset attribute into candidates. Empty entries are skipped.
// An absent or malformed descriptor yields DefaultScale.
func ParseSrcset(attr string) []Candidate {
	var candidates []Candidate
	for _, entry := range strings.Split(attr, ",") {
		fields := strings.Fields(entry)
		if len(fields) == 0 {
			continue
		}

		if len(fields) == 1 {
			candidates = append(candidates, Candidate{URL: fields[0], Scale: DefaultScale})
			continue
		}

		scale, err := ParseScale(fields[len(fields)-1])
		if err != nil {
			scale = DefaultScale
		}
		candidates = append(candidates, Candidate{
			URL:   strings.Join(fields[:len(fields)-1], " "),
			Scale: scale,
		})
	}
	return candidates
}

// ParseScale parses a pixel density descriptor such as "2x" or "1.5x".
// NaN and infinite values are malformed.
func ParseScale(descriptor string) (float64, error) {
	scale, err := strconv.ParseFloat(strings.TrimSuffix(descriptor, "x"), 64)
	if err != nil || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return DefaultScale, fmt.Errorf("%w: %q", errors.ErrMalformedScale, descriptor)
	}
	return scale, nil
}

// SelectHighest returns the candidate with the largest scale.
// Among equal scales the last one wins.
func SelectHighest(candidates []Candidate) (Candidate, bool) {
	var best Candidate
	found := false
	for _, c := range candidates {
		if !found || c.Scale >= best.Scale {
			best = c
			found = true
		}
	}
	return best, found
}

// ExtractFromHTML returns, for every <img> with a srcset, the URL of its highest-scale candidate
func ExtractFromHTML(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse post HTML: %w", err)
	}

	var urls []string
	doc.Find("img[srcset]").Each(func(i int, s *goquery.Selection) {
		srcset, _ := s.Attr("srcset")
		if best, ok := SelectHighest(ParseSrcset(srcset)); ok {
			urls = append(urls, best.URL)
		}
	})

	return urls, nil
}
