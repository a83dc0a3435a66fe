package controller

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-filestore-service/service"
	"github.com/tnqbao/gau-filestore-service/utils"
)

const defaultContentType = "application/octet-stream"

func (ctrl *Controller) ListFiles(c *gin.Context) {
	ctx := c.Request.Context()

	res, err := ctrl.Storage.List(ctx)
	if err != nil {
		ctrl.respondError(ctx, c, "List", err)
		return
	}

	if res.Empty {
		utils.JSON200(c, gin.H{"status": "No files found yet."})
		return
	}

	utils.JSON200(c, res.Entries)
}

// StoreFile reads the multipart body by position: the first part is the description,
// the second carries the file bytes with its filename and Content-Type.
func (ctrl *Controller) StoreFile(c *gin.Context) {
	ctx := c.Request.Context()

	reader, err := c.Request.MultipartReader()
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Store] Request is not multipart: %v", err)
		utils.JSON400(c, "No file uploaded or description missing")
		return
	}

	var in service.StoreInput
	for i := 0; i < 2; i++ {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Store] Failed to read multipart part %d: %v", i, err)
			utils.JSON400(c, "Invalid multipart payload")
			return
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Store] Failed to read multipart part %d: %v", i, err)
			utils.JSON400(c, "Invalid multipart payload")
			return
		}

		if i == 0 {
			description := string(data)
			in.Description = &description
			continue
		}

		in.Data = data
		if filename := part.FileName(); filename != "" {
			in.OriginalName = &filename
		}
		if contentType := part.Header.Get("Content-Type"); contentType != "" {
			in.ContentType = &contentType
		}
	}

	name, err := ctrl.Storage.Store(ctx, in)
	if err != nil {
		ctrl.respondError(ctx, c, "Store", err)
		return
	}

	utils.JSON200(c, gin.H{
		"status": "OK",
		"name":   name,
	})
}

func (ctrl *Controller) FetchFile(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	res, err := ctrl.Storage.Fetch(ctx, name)
	if err != nil {
		ctrl.respondError(ctx, c, "Fetch", err)
		return
	}
	defer res.Content.Close()

	headers := map[string]string{}
	if res.Record.OriginalName != nil && *res.Record.OriginalName != "" {
		headers["Content-Disposition"] = contentDisposition(*res.Record.OriginalName)
	}

	contentType := defaultContentType
	if res.Record.ContentType != nil && *res.Record.ContentType != "" {
		contentType = *res.Record.ContentType
	}

	// the stored size is not revalidated against the blob, so no Content-Length
	c.DataFromReader(http.StatusOK, -1, contentType, res.Content, headers)
}

func (ctrl *Controller) DeleteFile(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	if err := ctrl.Storage.Delete(ctx, name); err != nil {
		ctrl.respondError(ctx, c, "Delete", err)
		return
	}

	utils.JSON200(c, gin.H{"status": "OK"})
}

func (ctrl *Controller) Health(c *gin.Context) {
	utils.JSON200(c, gin.H{"status": "OK"})
}
