package routes

import (
	"errors"

	"boarding-marketplace-server/utils"

	"github.com/kataras/iris/v12"
)

// apiError carries an HTTP status through a transaction so a domain guard
// failure inside it rolls everything back and still maps onto the right
// response code.
type apiError struct {
	status  int
	title   string
	message string
}

func (e *apiError) Error() string { return e.message }

func notFound(message string) *apiError {
	return &apiError{iris.StatusNotFound, "Not Found", message}
}

func forbidden(message string) *apiError {
	return &apiError{iris.StatusForbidden, "Forbidden", message}
}

func badRequest(message string) *apiError {
	return &apiError{iris.StatusBadRequest, "Bad Request", message}
}

func conflict(message string) *apiError {
	return &apiError{iris.StatusConflict, "Conflict", message}
}

func gone(message string) *apiError {
	return &apiError{iris.StatusGone, "Gone", message}
}

func respondError(err error, ctx iris.Context) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		utils.CreateError(apiErr.status, apiErr.title, apiErr.message, ctx)
		return
	}
	utils.Logger.Errorw("unexpected error handling request", "path", ctx.Path(), "error", err)
	utils.CreateInternalServerError(ctx)
}
