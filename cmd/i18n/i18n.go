// Package i18n translates user facing CLI messages.
package i18n

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/arduino/go-paths-helper"
	"github.com/leonelquinteros/gotext"
)

var (
	mu sync.RWMutex
	po = newDefaultPo()
)

func newDefaultPo() *gotext.Po {
	return gotext.NewPo()
}

// Init loads the catalog for the user's language from localeDir, looking for
// <lang>_<REGION>.po first and then <lang>.po. Messages without a catalog are
// printed untranslated.
func Init(localeDir *paths.Path) {
	if localeDir == nil {
		return
	}
	for _, name := range candidates(userLocale()) {
		file := localeDir.Join(name + ".po")
		data, err := file.ReadFile()
		if err != nil {
			continue
		}
		catalog := gotext.NewPo()
		catalog.Parse(data)

		mu.Lock()
		po = catalog
		mu.Unlock()
		slog.Debug("Loaded translations", slog.String("file", file.String()))
		return
	}
}

// Tr returns msg translated and formatted with args.
func Tr(msg string, args ...any) string {
	mu.RLock()
	defer mu.RUnlock()
	return po.Get(msg, args...)
}

func userLocale() string {
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

// candidates turns "it_IT.UTF-8" into ["it_IT", "it"].
func candidates(locale string) []string {
	locale, _, _ = strings.Cut(locale, ".")
	locale, _, _ = strings.Cut(locale, "@")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return nil
	}
	res := []string{locale}
	if lang, _, found := strings.Cut(locale, "_"); found {
		res = append(res, lang)
	}
	return res
}
