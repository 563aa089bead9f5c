package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/handlers/testutil"
)

func TestHealth(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.JSONEq(t, `{"ok":true,"db":"sqlite","select1":1}`, w.Body.String())
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	env := testutil.NewEnv(t)
	sqlDB, err := env.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := env.Request(http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())

	body := testutil.DecodeJSON(t, w)
	require.Equal(t, false, body["ok"])
	require.NotEmpty(t, body["error"])
}
