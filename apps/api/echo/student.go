package echoapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/document"
	"github.com/brightloop/brightloop/core/student"
)

type studentApi struct {
	ServerDeps
}

func registerStudentAPI(g *echo.Group, deps ServerDeps, authed []echo.MiddlewareFunc) {
	api := studentApi{deps}

	sg := g.Group("/students", append(authed, schoolMiddleware(deps.SchoolSvc))...)
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.DELETE("", api.destroyMultiple)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
	sg.GET("/:id/certificate", api.certificateData)
	sg.POST("/:id/certificate", api.printCertificate)
}

func (api *studentApi) query(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	var filter student.QueryFilter
	var page core.Page
	if err = bindList(ctx, &filter, &page); err != nil {
		return err
	}
	filter.Clean()

	res, err := api.StudentSvc.Query(ctx.Request().Context(), p.ID, filter, page)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studentApi) create(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	var data student.Fields
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to student.Fields")
	}
	if err = data.Validate(api.Validate); err != nil {
		return err
	}

	s, err := api.StudentSvc.Create(ctx.Request().Context(), p.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	s, err := api.StudentSvc.Get(ctx.Request().Context(), p.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	var data student.Fields
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to student.Fields")
	}
	if err = data.Validate(api.Validate); err != nil {
		return err
	}

	s, err := api.StudentSvc.Update(ctx.Request().Context(), p.ID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	s, err := api.StudentSvc.Get(ctx.Request().Context(), p.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	if err = api.StudentSvc.Delete(ctx.Request().Context(), p.ID, s.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) destroyMultiple(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	var query DestroyMultipleRequest
	if err = ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err = api.StudentSvc.Delete(ctx.Request().Context(), p.ID, query.IDs...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// certificateData returns the date of birth certificate prefilled from the register.
func (api *studentApi) certificateData(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	s, err := api.StudentSvc.Get(ctx.Request().Context(), p.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	return ctx.JSON(http.StatusOK, document.NewCertificate(s))
}

func (api *studentApi) printCertificate(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	if _, err = api.StudentSvc.Get(ctx.Request().Context(), p.ID, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "finding student")
	}
	var data document.Certificate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Certificate")
	}
	if err = data.Validate(api.Validate); err != nil {
		return err
	}

	return renderHTML(ctx, func(w io.Writer) error {
		return api.Documents.DOBCertificate(w, p, data)
	})
}
