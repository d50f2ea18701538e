package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/admission"
	"github.com/brightloop/brightloop/core/words"
)

var errInvalidNumber = errors.New("must be a whole number")

type toolsApi struct {
	ServerDeps
}

func registerToolsAPI(g *echo.Group, deps ServerDeps) {
	api := toolsApi{deps}

	tg := g.Group("/tools")
	tg.GET("/number-words", api.numberWords)
	tg.GET("/date-words", api.dateWords)
	tg.GET("/nep-age", api.nepAge)
}

type WordsResponse struct {
	Words string `json:"words"`
}

func (api *toolsApi) numberWords(ctx echo.Context) error {
	n, err := strconv.Atoi(core.CleanString(ctx.QueryParam("n")))
	if err != nil {
		return core.NewValidationError(errInvalidNumber, core.FieldError{Field: "n", Error: errInvalidNumber.Error()})
	}
	return ctx.JSON(http.StatusOK, WordsResponse{Words: words.NumberToWords(n)})
}

// dateWords spells out a YYYY-MM-DD date; anything else gives empty words.
func (api *toolsApi) dateWords(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, WordsResponse{Words: words.DateToWords(core.CleanString(ctx.QueryParam("date")))})
}

// nepAge answers null when the projection cannot be computed.
func (api *toolsApi) nepAge(ctx echo.Context) error {
	proj := admission.CalculateNEPAge(
		core.CleanString(ctx.QueryParam("dob")),
		core.CleanString(ctx.QueryParam("session")),
		core.CleanString(ctx.QueryParam("class")),
	)
	return ctx.JSON(http.StatusOK, proj)
}
