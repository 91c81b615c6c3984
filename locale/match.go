package locale

import "golang.org/x/text/language"

// matcher pairs an x/text matcher with the registered locales it was built
// from, aligned by index. Rebuilt lazily whenever a locale is registered.
type matcher struct {
	m       language.Matcher
	locales []string
}

// Match returns the registered locale that best matches an Accept-Language
// header (quality weights included). When nothing matches, the header is
// empty, or no registered locale is a parsable tag, the default locale is
// returned.
func (g *Registry) Match(accept string) string {
	g.mu.Lock()
	if g.matcher == nil {
		g.matcher = newMatcher(g.localesLocked())
	}
	m := g.matcher
	def := g.def
	g.mu.Unlock()

	if accept == "" || m.m == nil {
		return def
	}

	_, idx := language.MatchStrings(m.m, accept)
	return m.locales[idx]
}

func newMatcher(locales []string) *matcher {
	tags := make([]language.Tag, 0, len(locales))
	valid := make([]string, 0, len(locales))
	for _, loc := range locales {
		tag, err := language.Parse(loc)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		valid = append(valid, loc)
	}
	if len(tags) == 0 {
		return &matcher{}
	}
	return &matcher{m: language.NewMatcher(tags), locales: valid}
}
