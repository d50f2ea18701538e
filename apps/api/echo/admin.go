package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/user"
)

type adminApi struct {
	ServerDeps
}

func registerAdminAPI(g *echo.Group, deps ServerDeps, authed []echo.MiddlewareFunc) {
	api := adminApi{deps}

	ag := g.Group("/admin", append(authed, adminMiddleware)...)
	ag.GET("/stats", api.stats)
	ag.GET("/roles", api.queryRoles)

	ag.GET("/users", api.queryUsers)
	ag.DELETE("/users", api.destroyUsers)
	ag.GET("/users/:id", api.retrieveUser)
	ag.PATCH("/users/:id", api.updateUser)
	ag.DELETE("/users/:id", api.destroyUser)

	ag.GET("/schools", api.querySchools)
	ag.GET("/schools/:id", api.retrieveSchool)
	ag.PUT("/schools/:id", api.updateSchool)
	ag.DELETE("/schools/:id", api.destroySchool)
}

type Stats struct {
	TotalUsers       int    `json:"totalUsers"`
	TotalSchools     int    `json:"totalSchools"`
	PendingApprovals int    `json:"pendingApprovals"`
	AvgRegsPerDay    string `json:"avgRegsPerDay"`
}

// computeStats sums up the accounts and schools. The registration rate is the number of
// schools per day since the oldest registration, or the school count itself when there
// are fewer than 2 schools.
func computeStats(users []user.User, schools []school.Profile, now time.Time) Stats {
	stats := Stats{TotalUsers: len(users), TotalSchools: len(schools)}
	for _, usr := range users {
		if !usr.IsApproved {
			stats.PendingApprovals++
		}
	}

	var oldest time.Time
	var dated int
	for _, p := range schools {
		if p.CreatedAt.IsZero() {
			continue
		}
		dated++
		if oldest.IsZero() || p.CreatedAt.Before(oldest) {
			oldest = p.CreatedAt
		}
	}
	avg := float64(dated)
	if days := now.Sub(oldest).Hours() / 24; dated > 1 && days > 0 {
		avg = float64(dated) / days
	}
	stats.AvgRegsPerDay = strconv.FormatFloat(avg, 'f', 1, 64)
	return stats
}

func (api *adminApi) stats(ctx echo.Context) error {
	users, err := api.UserSvc.Query(ctx.Request().Context(), user.QueryFilter{})
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	schools, err := api.SchoolSvc.Query(ctx.Request().Context(), school.QueryFilter{})
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	return ctx.JSON(http.StatusOK, computeStats(users, schools, core.NowFunc()))
}

func (api *adminApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

func (api *adminApi) queryUsers(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}
	filter.Clean()

	users, err := api.UserSvc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *adminApi) retrieveUser(ctx echo.Context) error {
	usr, err := api.UserSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

// updateUser approves accounts and changes roles.
func (api *adminApi) updateUser(ctx echo.Context) error {
	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	// admins cannot lock themselves out
	if ctx.Param("id") == sess.User.ID && ((data.IsApproved != nil && !*data.IsApproved) || (data.Role != "" && data.Role != user.RoleAdmin)) {
		return errHttpForbidden
	}

	usr, err := api.UserSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *adminApi) destroyUser(ctx echo.Context) error {
	// Say No to Suicide! admins cannot delete themselves
	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	if ctx.Param("id") == sess.User.ID {
		return errHttpForbidden
	}

	usr, err := api.UserSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	if err = api.UserSvc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) destroyUsers(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	// Say No to Suicide! admins cannot delete themselves
	sess, err := getSession(ctx)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	for _, id := range query.IDs {
		if id == sess.User.ID {
			return errHttpForbidden
		}
	}

	if err := api.UserSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) querySchools(ctx echo.Context) error {
	filter := new(school.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []school.Profile{})
	}
	filter.Clean()

	schools, err := api.SchoolSvc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	if schools == nil {
		schools = []school.Profile{}
	}
	return ctx.JSON(http.StatusOK, schools)
}

func (api *adminApi) retrieveSchool(ctx echo.Context) error {
	p, err := api.SchoolSvc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding school by ID")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *adminApi) updateSchool(ctx echo.Context) error {
	var data school.ProfileData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProfileData")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	p, err := api.SchoolSvc.UpdateProfile(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating school")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *adminApi) destroySchool(ctx echo.Context) error {
	if err := api.SchoolSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting school")
	}
	return ctx.NoContent(http.StatusNoContent)
}
