package echoapi

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/brightloop/brightloop/core"
)

const maxUploadSize = 2 << 20 // 2MB

var errNotAnImage = errors.New("file must be an image")

type (
	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}

	UndoRequest struct {
		Token string `json:"token" validate:"required"`
	}

	UndoResponse struct {
		Restored []string `json:"restored"`
	}
)

// bindList binds the query filter and the page requested.
func bindList(ctx echo.Context, filter interface{}, page *core.Page) error {
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding query filter")
	}
	if err := ctx.Bind(page); err != nil {
		return errors.Wrap(err, "binding page")
	}
	return nil
}

// renderHTML renders a document into memory first so that template errors still
// reach the error handler.
func renderHTML(ctx echo.Context, render func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}

// imageUpload opens the image sent in the "file" form field.
func imageUpload(ctx echo.Context) (io.ReadCloser, string, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return nil, "", core.NewValidationError(err, core.FieldError{Field: "file", Error: "file is required"})
	}
	if fh.Size > maxUploadSize {
		return nil, "", core.NewValidationError(nil, core.FieldError{Field: "file", Error: "file must not exceed 2MB"})
	}
	contentType := fh.Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", core.NewValidationError(errNotAnImage, core.FieldError{Field: "file", Error: errNotAnImage.Error()})
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", errors.Wrap(err, "opening uploaded file")
	}
	return f, contentType, nil
}
