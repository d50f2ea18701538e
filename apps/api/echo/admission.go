package echoapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/admission"
	"github.com/brightloop/brightloop/core/undo"
)

type admissionApi struct {
	ServerDeps
}

func registerAdmissionAPI(g *echo.Group, deps ServerDeps, authed []echo.MiddlewareFunc) {
	api := admissionApi{deps}

	ag := g.Group("/admissions", append(authed, schoolMiddleware(deps.SchoolSvc))...)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.DELETE("", api.destroyMultiple)
	ag.GET("/prefill", api.prefill)
	ag.POST("/undo", api.undo)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.POST("/:id/photo", api.uploadPhoto)
	ag.GET("/:id/print", api.print)
}

func (api *admissionApi) prefill(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	return ctx.JSON(http.StatusOK, admission.Prefill(p, sess.User.Email))
}

func (api *admissionApi) query(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	var filter admission.QueryFilter
	var page core.Page
	if err = bindList(ctx, &filter, &page); err != nil {
		return err
	}
	filter.Clean()

	res, err := api.AdmissionSvc.Query(ctx.Request().Context(), p.ID, filter, page)
	if err != nil {
		return errors.Wrap(err, "querying admission forms")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *admissionApi) create(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	var data admission.Fields
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to admission.Fields")
	}
	if err = data.Validate(api.Validate); err != nil {
		return err
	}

	f, err := api.AdmissionSvc.Create(ctx.Request().Context(), p.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating admission form")
	}
	return ctx.JSON(http.StatusCreated, admission.NewDetail(f))
}

func (api *admissionApi) retrieve(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	f, err := api.AdmissionSvc.Get(ctx.Request().Context(), p.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding admission form")
	}
	return ctx.JSON(http.StatusOK, admission.NewDetail(f))
}

func (api *admissionApi) update(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	var data admission.Fields
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to admission.Fields")
	}
	if err = data.Validate(api.Validate); err != nil {
		return err
	}

	f, err := api.AdmissionSvc.Update(ctx.Request().Context(), p.ID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating admission form")
	}
	return ctx.JSON(http.StatusOK, admission.NewDetail(f))
}

func (api *admissionApi) uploadPhoto(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	file, contentType, err := imageUpload(ctx)
	if err != nil {
		return err
	}
	defer file.Close()

	f, err := api.AdmissionSvc.UploadPhoto(ctx.Request().Context(), p.ID, ctx.Param("id"), file, contentType)
	if err != nil {
		return errors.Wrap(err, "uploading student photo")
	}
	return ctx.JSON(http.StatusOK, admission.NewDetail(f))
}

func (api *admissionApi) destroy(ctx echo.Context) error {
	return api.scheduleDelete(ctx, ctx.Param("id"))
}

func (api *admissionApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	return api.scheduleDelete(ctx, query.IDs...)
}

// scheduleDelete answers with the batch to pass back to undo before it expires.
func (api *admissionApi) scheduleDelete(ctx echo.Context, ids ...string) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	batch, err := api.AdmissionSvc.ScheduleDelete(ctx.Request().Context(), p.ID, ids...)
	if err != nil {
		return errors.Wrap(err, "scheduling deletion of admission forms")
	}
	return ctx.JSON(http.StatusAccepted, batch)
}

func (api *admissionApi) undo(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	var data UndoRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UndoRequest")
	}
	if err = api.Validate.Struct(data); err != nil {
		return err
	}

	ids, err := api.AdmissionSvc.Undo(ctx.Request().Context(), p.ID, data.Token)
	if err != nil {
		if errors.Cause(err) == undo.ErrNothingToUndo {
			return errNothingToUndo
		}
		return errors.Wrap(err, "undoing deletion of admission forms")
	}
	return ctx.JSON(http.StatusOK, UndoResponse{Restored: ids})
}

func (api *admissionApi) print(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	f, err := api.AdmissionSvc.Get(ctx.Request().Context(), p.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding admission form")
	}
	return renderHTML(ctx, func(w io.Writer) error {
		return api.Documents.AdmissionForm(w, p, f)
	})
}
