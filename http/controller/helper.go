package controller

import (
	"context"
	"strings"

	"emperror.dev/errors"
	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-filestore-service/service"
	"github.com/tnqbao/gau-filestore-service/utils"
)

const notFoundMessage = "The requested file could not be found"

// respondError maps the service error taxonomy onto HTTP status codes. Invalid names are
// answered like unknown ones.
func (ctrl *Controller) respondError(ctx context.Context, c *gin.Context, tag string, err error) {
	switch {
	case errors.Is(err, service.ErrBadRequest):
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[%s] Bad request: %v", tag, err)
		utils.JSON400(c, "No file uploaded or description missing")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrInvalidName):
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[%s] Not found: %v", tag, err)
		utils.JSON404(c, notFoundMessage)
	case errors.Is(err, service.ErrConflict):
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[%s] Conflict: %v", tag, err)
		utils.JSON409(c, "File record already exists")
	case errors.Is(err, service.ErrExhausted):
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[%s] Name space exhausted: %v", tag, err)
		utils.JSON503(c, "Could not allocate a file name, try again later")
	default:
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[%s] Internal error: %v", tag, err)
		utils.JSON500(c, "Internal server error")
	}
}

func contentDisposition(filename string) string {
	filename = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r", "", "\n", "").Replace(filename)
	return `attachment; filename="` + filename + `"`
}
