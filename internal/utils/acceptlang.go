package utils

import (
	"strings"

	"golang.org/x/text/language"
)

// DetermineLocale resolves the locale to use from an explicit choice, a
// preference list and the supported locales, falling back to def. The
// preference list may be an Accept-Language style header ("zh-CN,en;q=0.8")
// or a POSIX locale such as "zh_CN.UTF-8" taken from LANG.
func DetermineLocale(explicit, preferred string, supported []string, def string) string {
	sup := map[string]struct{}{}
	for _, s := range supported {
		sup[strings.ToLower(s)] = struct{}{}
	}
	pick := func(tag string) (string, bool) {
		if tag == "" {
			return "", false
		}
		t, err := language.Parse(normalizePOSIX(tag))
		if err != nil {
			return "", false
		}
		base, _ := t.Base()
		l := strings.ToLower(base.String())
		if _, ok := sup[l]; ok {
			return l, true
		}
		return "", false
	}

	if v, ok := pick(explicit); ok {
		return v
	}
	// ParseAcceptLanguage orders tags by descending q.
	if tags, _, err := language.ParseAcceptLanguage(normalizePOSIX(preferred)); err == nil {
		for _, t := range tags {
			if v, ok := pick(t.String()); ok {
				return v
			}
		}
	}
	if v, ok := pick(def); ok {
		return v
	}
	if len(supported) > 0 {
		return strings.ToLower(supported[0])
	}
	return "en"
}

// normalizePOSIX turns "zh_CN.UTF-8" into "zh-CN".
func normalizePOSIX(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 && !strings.ContainsAny(s, ",;") {
		s = s[:i]
	}
	if s == "C" || s == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(s, "_", "-")
}
