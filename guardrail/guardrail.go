// Package guardrail derives banned content categories from a query's wording
// and tests candidate descriptions against them.
package guardrail

import (
	"sort"
	"strings"
)

type rule struct {
	triggers []string
	bans     []string
}

var (
	upbeat = rule{
		triggers: []string{"happy", "uplifting", "comedy", "laugh", "cheerful", "funny"},
		bans:     []string{"Horror", "Thriller", "War", "Crime", "Tragedy"},
	}
	kids = rule{
		triggers: []string{"kid", "child", "animation", "disney", "pixar"},
		bans:     []string{"Horror", "Crime", "War", "Romance", "Adult"},
	}
	romance = rule{
		triggers: []string{"romantic", "romance"},
		bans:     []string{"Horror"},
	}
	familyBans = kids.bans
)

func (r rule) matches(q string) bool {
	for _, t := range r.triggers {
		if strings.Contains(q, t) {
			return true
		}
	}
	return false
}

// BannedCategories returns the categories a query's results must avoid,
// sorted. Triggers match as substrings of the lowercased query. A category
// the query names itself is never banned, so "happy crime caper" keeps
// Crime.
func BannedCategories(query string) []string {
	q := strings.ToLower(query)
	set := map[string]struct{}{}
	add := func(bans []string) {
		for _, b := range bans {
			set[b] = struct{}{}
		}
	}
	if upbeat.matches(q) {
		add(upbeat.bans)
	}
	if kids.matches(q) {
		add(kids.bans)
	} else if strings.Contains(q, "family") && !strings.Contains(q, "crime") {
		add(familyBans)
	}
	if romance.matches(q) {
		add(romance.bans)
	}
	banned := make([]string, 0, len(set))
	for b := range set {
		if strings.Contains(q, strings.ToLower(b)) {
			continue
		}
		banned = append(banned, b)
	}
	sort.Strings(banned)
	return banned
}

// IsBanned returns the first banned category that occurs in soup, ignoring
// case.
func IsBanned(soup string, banned []string) (string, bool) {
	if len(banned) == 0 {
		return "", false
	}
	s := strings.ToLower(soup)
	for _, b := range banned {
		if strings.Contains(s, strings.ToLower(b)) {
			return b, true
		}
	}
	return "", false
}
