package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/user"
)

type authApi struct {
	ServerDeps
}

func registerAuthAPI(g *echo.Group, deps ServerDeps, jwtConf middleware.JWTConfig, authed []echo.MiddlewareFunc) {
	api := authApi{deps}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)
	ag.POST("/signup", api.signup)
	ag.POST("/password-reset", api.resetPassword)
	ag.POST("/password-reset-confirm", api.confirmPasswordReset)
	ag.POST("/demo", api.demoLogin)

	// authed endpoints
	sg := ag.Group("", authed...)
	sg.POST("/token-refresh", api.refreshToken)
	sg.GET("/me", api.me)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), api.Conf, data.Email, data.Password, api.UserSvc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.Conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

// signup registers a school admin. The account waits for a system admin's approval.
func (api *authApi) signup(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.Validate, api.UserSvc); err != nil {
		return err
	}

	usr, err := api.UserSvc.Signup(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "signing up")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *authApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	if err := api.UserSvc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || core.IsNotFound(err)) {
		// do not return errors to attackers
		api.Logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *authApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	if err := api.UserSvc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

// demoLogin issues a read-only session on the demo school.
func (api *authApi) demoLogin(ctx echo.Context) error {
	if !api.Conf.Demo.Enabled {
		return errDemoDisabled
	}
	usr, err := api.UserSvc.GetByEmail(ctx.Request().Context(), DemoEmail)
	if err != nil {
		if core.IsNotFound(err) {
			return errDemoDisabled
		}
		return errors.Wrap(err, "finding demo user")
	}

	claims := GetUserClaims(api.Conf, usr)
	claims.Demo = true
	token, err := GenerateToken(api.Conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.Conf)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) me(ctx echo.Context) error {
	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}

	resp := MeResponse{User: sess.User, Demo: sess.Demo}
	if sess.User.HasSchool() {
		p, err := api.SchoolSvc.Get(ctx.Request().Context(), sess.User.SchoolID)
		if err == nil {
			resp.School = &p
		} else if !core.IsNotFound(err) {
			return errors.Wrap(err, "finding session school")
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	MeResponse struct {
		User   user.User       `json:"user"`
		School *school.Profile `json:"school"`
		Demo   bool            `json:"demo"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
