package echoapi

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightloop/brightloop/core/school"
)

func seedSite(t *testing.T, p school.Profile) school.Profile {
	p.Website.ContactEmail = "office@kupwara.school"
	p.Website.AdmissionOpen = true
	p.Website.Notifications = []school.Notification{
		{ID: "n1", Title: "Annual Day", Date: "2025-03-01"},
		{ID: "n2", Title: "Admissions open", Date: "2025-04-01", Link: "https://kupwara.school/admissions"},
	}
	p, err := schoolRepo.UpdateSchool(context.Background(), p)
	require.NoError(t, err)
	return p
}

func Test_siteApi(t *testing.T) {
	app := setup(t)
	fx := seed(t)
	p := seedSite(t, fx.school)
	siteURL := "http://example.com/site/" + p.Slug

	t.Run("page", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/site/"+p.Slug)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))

		html := rec.Body.String()
		assert.Contains(t, html, p.Name)
		assert.Contains(t, html, siteURL+"/notifications.ics")
		assert.Less(t, strings.Index(html, "Admissions open"), strings.Index(html, "Annual Day"))
	})

	t.Run("slug is case insensitive", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/site/"+strings.ToUpper(p.Slug))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("calendar", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/site/"+p.Slug+"/notifications.ics")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar"))

		cal, err := ical.NewDecoder(rec.Body).Decode()
		require.NoError(t, err)
		events := cal.Events()
		require.Len(t, events, 2)
		assert.Equal(t, "Admissions open", events[0].Props.Get(ical.PropSummary).Value)
		assert.Equal(t, siteURL, events[1].Props.Get(ical.PropURL).Value)
	})

	t.Run("contact", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/site/"+p.Slug+"/contact.vcf")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, `attachment; filename="`+p.Slug+`.vcf"`, rec.Header().Get("Content-Disposition"))

		card, err := vcard.NewDecoder(rec.Body).Decode()
		require.NoError(t, err)
		assert.Equal(t, p.Name, card.PreferredValue(vcard.FieldFormattedName))
		assert.Equal(t, "office@kupwara.school", card.PreferredValue(vcard.FieldEmail))
		assert.Equal(t, siteURL, card.PreferredValue(vcard.FieldURL))
	})

	t.Run("public profile", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/sites/"+p.Slug)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, p.Public())}, rec)
		assert.NotContains(t, rec.Body.String(), p.OwnerUID)
	})

	t.Run("unknown school", func(t *testing.T) {
		for _, path := range []string{"/site/lol", "/site/lol/notifications.ics", "/site/lol/contact.vcf", "/v1/sites/lol"} {
			req, rec := newRequest(http.MethodGet, path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "school not found"})}, rec)
		}
	})
}

func Test_siteApi_calendarWithoutNotifications(t *testing.T) {
	app := setup(t)
	fx := seed(t)

	req, rec := newRequest(http.MethodGet, "/site/"+fx.school.Slug+"/notifications.ics")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar"))

	cal, err := ical.NewDecoder(rec.Body).Decode()
	require.NoError(t, err)
	assert.Equal(t, fx.school.Name, cal.Props.Get("X-WR-CALNAME").Value)
	assert.Empty(t, cal.Events())
}
