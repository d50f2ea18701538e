package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountNotApproved   = echo.NewHTTPError(http.StatusForbidden, "account is awaiting approval")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
	errDemoReadOnly         = echo.NewHTTPError(http.StatusForbidden, "demo mode is read-only")
	errDemoDisabled         = echo.NewHTTPError(http.StatusNotFound, "demo mode is disabled")
	errNoSchool             = echo.NewHTTPError(http.StatusForbidden, "set up your school first")
	errNothingToUndo        = echo.NewHTTPError(http.StatusNotFound, "nothing to undo")
)

// errorResponse maps err to a status code and a JSON body: a map of field errors for
// validation failures, a message otherwise. ok is false for unexpected (server) errors.
func errorResponse(err error, translator ut.Translator) (code int, body interface{}, ok bool) {
	switch cause := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if cause == middleware.ErrJWTMissing {
			return http.StatusUnauthorized, cause.Message, true
		}
		if inner, isHTTP := cause.Internal.(*echo.HTTPError); isHTTP {
			cause = inner
		}
		return cause.Code, cause.Message, true

	case validator.ValidationErrors:
		fields := make(map[string]string, len(cause))
		for _, fe := range cause {
			fields[fe.Field()] = fe.Translate(translator)
		}
		return http.StatusBadRequest, fields, true

	case *core.ValidationError:
		if len(cause.Fields) == 0 {
			return http.StatusBadRequest, cause.Error(), true
		}
		fields := make(map[string]string, len(cause.Fields))
		for _, fe := range cause.Fields {
			fields[fe.Field] = fe.Error
		}
		return http.StatusBadRequest, fields, true

	case *core.NotFoundError:
		return http.StatusNotFound, cause.Error(), true
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false
}

// newAppHTTPErrorHandler reports unexpected errors with the session's user attached.
// A core shutdown error also triggers signalShutdown.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, body, ok := errorResponse(err, translator)
		if !ok {
			var usr user.User
			if sess, sErr := getSession(ctx); sErr == nil {
				usr = sess.User
			}
			logger.Error(ctx.Request().Method+" "+ctx.Path()+" failed", err, usr)

			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			body = err.Error()
		}
		if msg, isMsg := body.(string); isMsg {
			body = echo.Map{"error": msg}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, body)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
