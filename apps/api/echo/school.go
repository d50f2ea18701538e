package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core/school"
)

type schoolApi struct {
	ServerDeps
}

func registerSchoolAPI(g *echo.Group, deps ServerDeps, authed []echo.MiddlewareFunc) {
	api := schoolApi{deps}

	sg := g.Group("/school", authed...)
	sg.POST("/setup", api.setup)
	sg.GET("/options", api.options)

	og := sg.Group("", schoolMiddleware(deps.SchoolSvc))
	og.GET("", api.retrieve)
	og.PUT("", api.updateProfile)
	og.PUT("/website", api.updateWebsite)
	og.POST("/signature", api.uploadSignature)
	og.POST("/logo", api.uploadLogo)
}

// setup creates the school of the session user, or updates it when it exists already.
func (api *schoolApi) setup(ctx echo.Context) error {
	var data school.ProfileData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfileData")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	p, err := api.SchoolSvc.Setup(ctx.Request().Context(), sess.User, data)
	if err != nil {
		return errors.Wrap(err, "setting up school")
	}
	return ctx.JSON(http.StatusCreated, p)
}

type SchoolOptions struct {
	Types       []school.Type `json:"types"`
	Managements []string      `json:"managements"`
	Classes     []string      `json:"classes"`
	Facilities  []string      `json:"facilities"`
	ThemeColors []string      `json:"themeColors"`
}

func (api *schoolApi) options(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, SchoolOptions{
		Types:       school.AllTypes,
		Managements: school.AllManagements,
		Classes:     school.MasterClassList,
		Facilities:  school.Facilities,
		ThemeColors: school.ThemeColors,
	})
}

func (api *schoolApi) retrieve(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *schoolApi) updateProfile(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	var data school.ProfileData
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfileData")
	}
	if err = data.Validate(api.Validate); err != nil {
		return err
	}

	p, err = api.SchoolSvc.UpdateProfile(ctx.Request().Context(), p.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating school profile")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *schoolApi) updateWebsite(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	var data school.WebsiteConfig
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to WebsiteConfig")
	}
	if err = data.Validate(api.Validate); err != nil {
		return err
	}

	p, err = api.SchoolSvc.UpdateWebsite(ctx.Request().Context(), p.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating school website")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *schoolApi) uploadSignature(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	f, contentType, err := imageUpload(ctx)
	if err != nil {
		return err
	}
	defer f.Close()

	p, err = api.SchoolSvc.UploadSignature(ctx.Request().Context(), p.ID, f, contentType)
	if err != nil {
		return errors.Wrap(err, "uploading signature")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *schoolApi) uploadLogo(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	f, contentType, err := imageUpload(ctx)
	if err != nil {
		return err
	}
	defer f.Close()

	p, err = api.SchoolSvc.UploadLogo(ctx.Request().Context(), p.ID, f, contentType)
	if err != nil {
		return errors.Wrap(err, "uploading logo")
	}
	return ctx.JSON(http.StatusOK, p)
}
