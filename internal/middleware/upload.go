package middleware

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const stagedFileKeyPrefix = "stagedFile:"

// StageUploads copies the named multipart file fields into local temporary
// files before the handler runs. Absent fields are skipped; the handler
// decides which ones are required. Every staged file still on disk when the
// handler returns is removed, whatever the outcome.
func StageUploads(fields ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			staged := make([]string, 0, len(fields))
			defer func() {
				for _, path := range staged {
					os.Remove(path)
				}
			}()

			for _, field := range fields {
				fileHeader, err := c.FormFile(field)
				if err != nil {
					continue
				}
				path, err := saveToTemp(fileHeader)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "Failed to stage uploaded file").SetInternal(err)
				}
				staged = append(staged, path)
				c.Set(stagedFileKeyPrefix+field, path)
			}

			return next(c)
		}
	}
}

// StagedFile returns the temporary path of a staged upload field, or "" when
// the field was not part of the request.
func StagedFile(c echo.Context, field string) string {
	path, _ := c.Get(stagedFileKeyPrefix + field).(string)
	return path
}

func saveToTemp(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(fileHeader.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
