package server

import (
	"context"
	goerrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch/stockwatch/errors"
	"github.com/stockwatch/stockwatch/logger"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.NoError(t, cfg.Validate())
}

func TestConfigRejectsBadPort(t *testing.T) {
	cfg := Config{Port: 70000}
	assert.Error(t, cfg.Validate())
}

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondError(c, err)
	return rec
}

func TestRespondErrorMapsAppError(t *testing.T) {
	rec := respond(errors.NoSuchUser())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "No such user"}`, rec.Body.String())
}

func TestRespondErrorEmptyMessageMeansBareStatus(t *testing.T) {
	rec := respond(errors.Forbidden())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = respond(errors.Unauthorized())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRespondErrorHidesUnknownErrors(t *testing.T) {
	rec := respond(goerrors.New("connection reset by peer"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "Something went wrong"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestServerStartStop(t *testing.T) {
	_, err := New(Config{Port: -1}, logger.NewDefault())
	require.Error(t, err)

	srv, err := New(Config{Host: "127.0.0.1", Port: 18321}, logger.NewDefault())
	require.NoError(t, err)

	srv.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	require.NoError(t, srv.Start())
	defer func() { _ = srv.Stop(context.Background()) }()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/ping", 18321))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop(context.Background()))
}
