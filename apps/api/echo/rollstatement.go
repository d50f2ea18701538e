package echoapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/rollstatement"
	"github.com/brightloop/brightloop/core/undo"
)

type rollStatementApi struct {
	ServerDeps
}

func registerRollStatementAPI(g *echo.Group, deps ServerDeps, authed []echo.MiddlewareFunc) {
	api := rollStatementApi{deps}

	rg := g.Group("/roll-statements", append(authed, schoolMiddleware(deps.SchoolSvc))...)
	rg.GET("", api.query)
	rg.POST("", api.create)
	rg.DELETE("", api.destroyMultiple)
	rg.GET("/draft", api.draft)
	rg.POST("/undo", api.undo)
	rg.GET("/:id", api.retrieve)
	rg.PUT("/:id", api.update)
	rg.DELETE("/:id", api.destroy)
	rg.GET("/:id/print", api.print)
}

// StatementDetail is a roll statement along with its totals.
type StatementDetail struct {
	rollstatement.Statement
	Totals rollstatement.Totals `json:"totals"`
}

func newStatementDetail(s rollstatement.Statement) StatementDetail {
	return StatementDetail{Statement: s, Totals: s.Totals()}
}

func (api *rollStatementApi) draft(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	f, err := api.RollStmtSvc.NewDraft(ctx.Request().Context(), p)
	if err != nil {
		return errors.Wrap(err, "drafting roll statement")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *rollStatementApi) query(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	var filter rollstatement.QueryFilter
	var page core.Page
	if err = bindList(ctx, &filter, &page); err != nil {
		return err
	}
	filter.Clean()

	res, err := api.RollStmtSvc.Query(ctx.Request().Context(), p.ID, filter, page)
	if err != nil {
		return errors.Wrap(err, "querying roll statements")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *rollStatementApi) create(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	var data rollstatement.Fields
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to rollstatement.Fields")
	}
	if err = data.Validate(api.Validate); err != nil {
		return err
	}

	s, err := api.RollStmtSvc.Create(ctx.Request().Context(), p.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating roll statement")
	}
	return ctx.JSON(http.StatusCreated, newStatementDetail(s))
}

func (api *rollStatementApi) retrieve(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	s, err := api.RollStmtSvc.Get(ctx.Request().Context(), p.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding roll statement")
	}
	return ctx.JSON(http.StatusOK, newStatementDetail(s))
}

func (api *rollStatementApi) update(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	var data rollstatement.Fields
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to rollstatement.Fields")
	}
	if err = data.Validate(api.Validate); err != nil {
		return err
	}

	s, err := api.RollStmtSvc.Update(ctx.Request().Context(), p.ID, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating roll statement")
	}
	return ctx.JSON(http.StatusOK, newStatementDetail(s))
}

func (api *rollStatementApi) destroy(ctx echo.Context) error {
	return api.scheduleDelete(ctx, ctx.Param("id"))
}

func (api *rollStatementApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	return api.scheduleDelete(ctx, query.IDs...)
}

func (api *rollStatementApi) scheduleDelete(ctx echo.Context, ids ...string) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	batch, err := api.RollStmtSvc.ScheduleDelete(ctx.Request().Context(), p.ID, ids...)
	if err != nil {
		return errors.Wrap(err, "scheduling deletion of roll statements")
	}
	return ctx.JSON(http.StatusAccepted, batch)
}

func (api *rollStatementApi) undo(ctx echo.Context) error {
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

	ids, err := api.RollStmtSvc.Undo(ctx.Request().Context(), p.ID, data.Token)
	if err != nil {
		if errors.Cause(err) == undo.ErrNothingToUndo {
			return errNothingToUndo
		}
		return errors.Wrap(err, "undoing deletion of roll statements")
	}
	return ctx.JSON(http.StatusOK, UndoResponse{Restored: ids})
}

func (api *rollStatementApi) print(ctx echo.Context) error {
	p, err := getSchool(ctx)
	if err != nil {
		return err
	}
	s, err := api.RollStmtSvc.Get(ctx.Request().Context(), p.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding roll statement")
	}
	return renderHTML(ctx, func(w io.Writer) error {
		return api.Documents.RollStatement(w, p, s)
	})
}
