package handlers

import (
	"fmt"
	"mime/multipart"

	"github.com/labstack/echo/v4"
	"github.com/openboard/backend/pkg/storage"
)

// uploadFile streams a multipart file to the media service and returns the
// hosted URL. Single attempt, no retries.
func uploadFile(c echo.Context, up storage.Uploader, fh *multipart.FileHeader, folder string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return up.Upload(c.Request().Context(), src, folder, fh.Header.Get("Content-Type"))
}
