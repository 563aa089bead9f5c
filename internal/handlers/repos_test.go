package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/github"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/handlers/testutil"
)

type reposPayload struct {
	OK       bool                `json:"ok"`
	Username string              `json:"username"`
	Repos    []github.Repository `json:"repos"`
}

func TestRepoListServesAndCaches(t *testing.T) {
	env := testutil.NewEnv(t)
	now := time.Now()
	env.Upstream.SetRepos(testutil.Username,
		testutil.Repo("portfolio", 4, now, "go", "web"),
		testutil.Repo("dotfiles", 1, now.Add(-time.Hour)),
	)

	for i := 0; i < 3; i++ {
		w := env.Request(http.MethodGet, "/api/github/repos", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var payload reposPayload
		testutil.DecodeInto(t, w, &payload)
		require.True(t, payload.OK)
		require.Equal(t, testutil.Username, payload.Username)
		require.Len(t, payload.Repos, 2)
		require.Equal(t, []string{"go", "web"}, payload.Repos[0].Topics)
	}
	require.Equal(t, int64(1), env.Upstream.Calls())
}

func TestRepoListUsernameParameter(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Upstream.SetRepos("someone", testutil.Repo("theirs", 0, time.Now()))

	w := env.Request(http.MethodGet, "/api/github/repos?username=someone", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload reposPayload
	testutil.DecodeInto(t, w, &payload)
	require.Equal(t, "someone", payload.Username)
	require.Equal(t, "theirs", payload.Repos[0].Name)
}

func TestRepoListMapsUpstreamFailures(t *testing.T) {
	cases := []struct {
		name     string
		upstream int
		status   int
		code     string
	}{
		{"rate limited", http.StatusForbidden, http.StatusForbidden, "rate_limited"},
		{"server error", http.StatusInternalServerError, http.StatusInternalServerError, "upstream_error"},
		{"not found", http.StatusNotFound, http.StatusNotFound, "bad_status"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := testutil.NewEnv(t)
			env.Upstream.FailWith(tc.upstream)

			w := env.Request(http.MethodGet, "/api/github/repos?username=ghost", nil, nil)
			require.Equal(t, tc.status, w.Code, w.Body.String())

			body := testutil.DecodeJSON(t, w)
			require.Equal(t, false, body["ok"])
			require.Equal(t, tc.code, body["error"])
			require.Equal(t, "ghost", body["username"])
			require.NotEmpty(t, body["message"])
		})
	}
}

func TestRepoListFailureIsNotCached(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Upstream.FailWith(http.StatusBadGateway)

	w := env.Request(http.MethodGet, "/api/github/repos", nil, nil)
	require.Equal(t, http.StatusBadGateway, w.Code)

	env.Upstream.FailWith(0)
	env.Upstream.SetRepos(testutil.Username, testutil.Repo("back", 0, time.Now()))

	w = env.Request(http.MethodGet, "/api/github/repos", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, int64(2), env.Upstream.Calls())
}
