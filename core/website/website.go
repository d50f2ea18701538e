// Package website publishes a school's public site: the marketing page, the notice
// board as an iCalendar feed and the school contact card.
package website

import (
	"html/template"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/admission"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/words"
	appfs "github.com/brightloop/brightloop/fs"
)

const pageTemplate = "templates/site/page.gohtml"

var themeHex = map[string]string{
	"indigo":  "#4f46e5",
	"blue":    "#2563eb",
	"emerald": "#059669",
	"rose":    "#e11d48",
	"violet":  "#7c3aed",
	"amber":   "#d97706",
	"slate":   "#475569",
}

// ThemeHex returns the CSS colour of a theme, falling back on the default theme.
func ThemeHex(theme string) string {
	if hex, ok := themeHex[theme]; ok {
		return hex
	}
	return themeHex[school.DefaultThemeColor]
}

// SiteURL is the address of the public site of a school.
func SiteURL(baseURL, slug string) string {
	return baseURL + "/site/" + slug
}

type Renderer struct {
	page *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("page.gohtml").Funcs(template.FuncMap{"dmy": words.FormatDMY}).ParseFS(appfs.FS, pageTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "parsing site template")
	}
	return &Renderer{page: tmpl}, nil
}

// Page renders the public page of the school. siteURL is where the page is served from.
func (r *Renderer) Page(w io.Writer, p school.Profile, siteURL string) error {
	data := struct {
		School        school.PublicProfile
		ThemeHex      string
		Session       string
		Notifications []school.Notification
		CalendarURL   string
		ContactURL    string
	}{
		School:        p.Public(),
		ThemeHex:      ThemeHex(p.Website.ThemeColor),
		Session:       admission.CurrentSession(core.NowFunc()),
		Notifications: LatestFirst(p.Website.Notifications),
		CalendarURL:   siteURL + "/notifications.ics",
		ContactURL:    siteURL + "/contact.vcf",
	}
	return errors.Wrap(r.page.Execute(w, data), "rendering site page")
}

// LatestFirst returns a copy of the notifications sorted by date, most recent first.
func LatestFirst(notifications []school.Notification) []school.Notification {
	sorted := append([]school.Notification(nil), notifications...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })
	return sorted
}
