package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindBody(t *testing.T, body string, target interface{}) error {
	t.Helper()

	e := echo.New()
	e.Binder = &strictBinder{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	return c.Bind(target)
}

func TestStrictBinderAcceptsKnownFields(t *testing.T) {
	var payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, bindBody(t, `{"name":"Acme"}`, &payload))
	assert.Equal(t, "Acme", payload.Name)
}

func TestStrictBinderRejectsUnknownFields(t *testing.T) {
	var payload struct {
		Name string `json:"name"`
	}
	err := bindBody(t, `{"name":"Acme","tenant_id":"sneaky"}`, &payload)
	require.Error(t, err)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestStrictBinderRejectsMalformedJSON(t *testing.T) {
	var payload struct {
		Name string `json:"name"`
	}
	require.Error(t, bindBody(t, `{"name":`, &payload))
}

func TestStrictBinderAllowsEmptyBody(t *testing.T) {
	var payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, bindBody(t, "", &payload))
	assert.Empty(t, payload.Name)
}
