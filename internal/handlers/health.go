package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/streamtube/backend/internal/response"
)

func HealthCheck(c echo.Context) error {
	return response.JSON(c, http.StatusOK, echo.Map{"status": "ok"}, "Service is healthy")
}
