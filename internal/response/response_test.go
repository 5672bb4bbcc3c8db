package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(method string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/api/v1/videos", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestJSONEnvelope(t *testing.T) {
	c, rec := testContext(http.MethodGet)

	err := JSON(c, http.StatusCreated, echo.Map{"name": "first"}, "Created successfully")
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusCreated, envelope.StatusCode)
	assert.Equal(t, "Created successfully", envelope.Message)
	assert.True(t, envelope.Success)
	assert.Equal(t, map[string]interface{}{"name": "first"}, envelope.Data)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestErrorHandlerHTTPError(t *testing.T) {
	c, rec := testContext(http.MethodGet)
	handler := NewHTTPErrorHandler(quietLogger())

	handler(echo.NewHTTPError(http.StatusNotFound, "Video not found"), c)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, body.StatusCode)
	assert.Equal(t, "Video not found", body.Message)
	assert.False(t, body.Success)
	assert.NotNil(t, body.Errors)
	assert.Empty(t, body.Errors)
}

func TestErrorHandlerBadRequestCarriesDetail(t *testing.T) {
	c, rec := testContext(http.MethodPost)
	handler := NewHTTPErrorHandler(quietLogger())

	httpErr := echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload").
		SetInternal(errors.New("field Title is required"))
	handler(httpErr, c)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, body.StatusCode)
	assert.Equal(t, []string{"field Title is required"}, body.Errors)
}

func TestErrorHandlerHidesServerFaults(t *testing.T) {
	c, rec := testContext(http.MethodGet)
	handler := NewHTTPErrorHandler(quietLogger())

	httpErr := echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch video").
		SetInternal(errors.New("connection refused to mongodb"))
	handler(httpErr, c)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, body.StatusCode)
	assert.Equal(t, "Internal server error", body.Message)
	assert.Empty(t, body.Errors)
	assert.NotContains(t, rec.Body.String(), "mongodb")
}

func TestErrorHandlerPlainError(t *testing.T) {
	c, rec := testContext(http.MethodGet)
	handler := NewHTTPErrorHandler(quietLogger())

	handler(errors.New("boom"), c)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, body.StatusCode)
	assert.Equal(t, "Internal server error", body.Message)
	assert.False(t, body.Success)
}

func TestErrorHandlerHeadHasNoBody(t *testing.T) {
	c, rec := testContext(http.MethodHead)
	handler := NewHTTPErrorHandler(quietLogger())

	handler(echo.NewHTTPError(http.StatusNotFound, "Video not found"), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}
