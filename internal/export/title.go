package export

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var mapPrefixes = []string{"de_", "cs_", "ar_", "dz_"}

var titleCaser = cases.Title(language.English)

// IntroTitle turns a raw map label into display text for the intro overlay:
// the game-mode prefix is dropped, underscores become spaces, and each word
// is title-cased ("de_dust2" becomes "Dust2").
func IntroTitle(mapLabel string) string {
	label := strings.TrimSpace(strings.ToLower(mapLabel))
	for _, prefix := range mapPrefixes {
		if strings.HasPrefix(label, prefix) {
			label = strings.TrimPrefix(label, prefix)
			break
		}
	}
	label = strings.ReplaceAll(label, "_", " ")
	if label == "" {
		return ""
	}
	return titleCaser.String(label)
}
