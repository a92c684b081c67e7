// Package i18n localizes doclocal's own user-facing strings.
//
// It wraps gotext: translations are embedded in the binary and selected at
// startup from the usual gettext environment variables. Call Init once in
// main, then T for plain strings and N for plural forms. A missing
// translation falls through to the original string.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

// locales embeds the compiled translation catalogs.
// Layout: locales/{lang}/LC_MESSAGES/doclocal.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name.
const domain = "doclocal"

var locale *gotext.Locale

// Init selects the UI language. An empty lang auto-detects from LANGUAGE,
// LC_ALL, LC_MESSAGES and LANG in that order, following GNU gettext.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	locale = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	locale.AddDomain(domain)
	locale.SetDomain(domain)
}

// T translates msgid, returning it unchanged when no translation exists.
func T(msgid string) string {
	if locale == nil {
		return msgid
	}
	return locale.Get(msgid)
}

// N translates with plural forms; the target language's plural rules pick
// the form for n.
func N(singular, plural string, n int) string {
	if locale == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return locale.GetN(singular, plural, n)
}

// detectLanguage reads the gettext environment variables.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		if idx := strings.IndexByte(val, '.'); idx >= 0 {
			val = val[:idx]
		}
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
