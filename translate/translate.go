// Package translate selects a message printer from the user's locales and
// formats user-facing text through it.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer *message.Printer

func init() {
	registerCatalog()

	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("pipeviz: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Default returns the printer chosen from the user's locales.
func Default() *message.Printer {
	return printer
}

// NewPrinter returns a printer pinned to the given language. Used where the
// output must not depend on the environment, such as in tests.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}
