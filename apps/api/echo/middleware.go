package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/school"
)

func adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sess, err := getSession(ctx)
		if err != nil {
			return errors.Wrap(err, "getting session")
		}
		if sess.User.IsAdmin() {
			return next(ctx)
		}
		return errHttpForbidden
	}
}

// demoPrintRoutes render documents from a posted body without changing anything.
var demoPrintRoutes = map[string]bool{
	"/v1/students/:id/certificate": true,
}

// readOnlyDemoMiddleware lets demo sessions through on safe methods and print routes only.
func readOnlyDemoMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sess, err := getSession(ctx)
		if err != nil {
			return errors.Wrap(err, "getting session")
		}
		switch ctx.Request().Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if sess.Demo && !demoPrintRoutes[ctx.Path()] {
				return errDemoReadOnly
			}
		}
		return next(ctx)
	}
}

// schoolMiddleware loads the school managed by the session user into the context.
func schoolMiddleware(svc school.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, err := getSession(ctx)
			if err != nil {
				return errors.Wrap(err, "getting session")
			}
			if !sess.User.HasSchool() {
				return errNoSchool
			}
			p, err := svc.Get(ctx.Request().Context(), sess.User.SchoolID)
			if err != nil {
				if core.IsNotFound(err) {
					return errNoSchool
				}
				return errors.Wrap(err, "finding session school")
			}
			ctx.Set(schoolContextKey, p)
			return next(ctx)
		}
	}
}

func getSchool(ctx echo.Context) (school.Profile, error) {
	if p, ok := ctx.Get(schoolContextKey).(school.Profile); ok {
		return p, nil
	}
	return school.Profile{}, errNoSchool
}
