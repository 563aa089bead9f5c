package handlers_test

import (
	"encoding/xml"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/handlers/testutil"
)

func TestFeedServesRSS(t *testing.T) {
	env := testutil.NewEnv(t)
	now := time.Now()
	env.Upstream.SetRepos(testutil.Username,
		testutil.Repo("older", 0, now.Add(-time.Hour)),
		testutil.Repo("newer", 0, now),
	)

	w := env.Request(http.MethodGet, "/feed.xml", nil, map[string]string{
		"Host":              "portfolio.test",
		"X-Forwarded-Proto": "https",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "application/rss+xml")
	require.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	require.Equal(t, 2, doc.Find("item").Length())

	var rss struct {
		Channel struct {
			Title string `xml:"title"`
			Link  string `xml:"link"`
			Items []struct {
				Title string `xml:"title"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	require.NoError(t, xml.Unmarshal(w.Body.Bytes(), &rss))
	require.Equal(t, "octocat's updates", rss.Channel.Title)
	require.Equal(t, "https://portfolio.test/", rss.Channel.Link)
	require.Equal(t, "newer", rss.Channel.Items[0].Title)
}

func TestFeedUnavailable(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Upstream.FailWith(http.StatusInternalServerError)

	w := env.Request(http.MethodGet, "/feed.xml", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "Service Unavailable", w.Body.String())
	require.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	require.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))
}

func TestFeedIgnoresUsernameParameter(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Upstream.SetRepos(testutil.Username, testutil.Repo("mine", 0, time.Now()))
	env.Upstream.SetRepos("someone-else", testutil.Repo("theirs", 0, time.Now()))

	w := env.Request(http.MethodGet, "/feed.xml?username=someone-else", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "octocat's updates")
	require.Contains(t, w.Body.String(), "<title>mine</title>")
	require.NotContains(t, w.Body.String(), "theirs")
}
