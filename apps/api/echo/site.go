package echoapi

import (
	"bytes"
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core/blob"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/website"
)

type siteApi struct {
	ServerDeps
}

// registerSiteAPI serves the public school websites. None of these routes need a session.
func registerSiteAPI(app *echo.Echo, deps ServerDeps) {
	api := siteApi{deps}

	sg := app.Group("/site/:slug")
	sg.GET("", api.page)
	sg.GET("/notifications.ics", api.calendar)
	sg.GET("/contact.vcf", api.contact)

	app.GET("/v1/sites/:slug", api.profile)
}

func (api *siteApi) school(ctx echo.Context) (school.Profile, error) {
	p, err := api.SchoolSvc.GetBySlug(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return school.Profile{}, errors.Wrap(err, "finding school by slug")
	}
	return p, nil
}

func siteURL(ctx echo.Context, slug string) string {
	return website.SiteURL(ctx.Scheme()+"://"+ctx.Request().Host, slug)
}

func (api *siteApi) page(ctx echo.Context) error {
	p, err := api.school(ctx)
	if err != nil {
		return err
	}
	return renderHTML(ctx, func(w io.Writer) error {
		return api.Sites.Page(w, p, siteURL(ctx, p.Slug))
	})
}

func (api *siteApi) calendar(ctx echo.Context) error {
	p, err := api.school(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = website.Calendar(&buf, p, siteURL(ctx, p.Slug)); err != nil {
		return err
	}
	return ctx.Blob(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func (api *siteApi) contact(ctx echo.Context) error {
	p, err := api.school(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = website.Contact(&buf, p, siteURL(ctx, p.Slug)); err != nil {
		return err
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+p.Slug+`.vcf"`)
	return ctx.Blob(http.StatusOK, "text/vcard; charset=utf-8", buf.Bytes())
}

func (api *siteApi) profile(ctx echo.Context) error {
	p, err := api.school(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p.Public())
}

// serveMedia streams uploaded files for the stores without a public address of their own.
func (s *Server) serveMedia(ctx echo.Context) error {
	key, err := url.PathUnescape(ctx.Param("*"))
	if err != nil {
		return errHttpNotFound
	}
	if key, err = blob.CleanKey(key); err != nil {
		return errHttpNotFound
	}

	info, rc, err := s.deps.Store.Get(ctx.Request().Context(), key)
	if err != nil {
		return errors.Wrap(err, "getting blob")
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return ctx.Stream(http.StatusOK, contentType, rc)
}
