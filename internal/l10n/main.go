// Package l10n translates the messages shown to users of the command line
// tool. Translations are looked up in the "sysconfig-inspector" gettext
// domain of the user's locale; untranslated messages are returned as is.
package l10n

import (
	"fmt"

	"github.com/snapcore/go-gettext"
)

const domainName = "sysconfig-inspector"

var domain gettext.TextDomain
var locale gettext.Catalog

func init() {
	domain = gettext.TextDomain{Name: domainName}
	locale = domain.UserLocale()
}

func format(translation string, vars []interface{}) string {
	if len(vars) == 0 {
		return translation
	}
	return fmt.Sprintf(translation, vars...)
}

// T localizes simple strings.
func T(str string, vars ...interface{}) string {
	return format(locale.Gettext(str), vars)
}

// TN localizes strings with plurals.
func TN(singular, plural string, n uint32, vars ...interface{}) string {
	return format(locale.NGettext(singular, plural, n), vars)
}

// TC localizes strings with contexts.
func TC(ctx, str string, vars ...interface{}) string {
	return format(locale.PGettext(ctx, str), vars)
}

// TNC localizes strings with contexts and plurals.
func TNC(ctx, singular, plural string, n uint32, vars ...interface{}) string {
	return format(locale.NPGettext(ctx, singular, plural, n), vars)
}
