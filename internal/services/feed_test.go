package services

import (
	"context"
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/github"
)

type rssDocument struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel struct {
		Title       string    `xml:"title"`
		Link        string    `xml:"link"`
		Description string    `xml:"description"`
		Items       []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink string `xml:"isPermaLink,attr"`
}

func parseRSS(t *testing.T, body string) rssDocument {
	t.Helper()
	var doc rssDocument
	require.NoError(t, xml.Unmarshal([]byte(body), &doc))
	return doc
}

func countItems(t *testing.T, body string) int {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc.Find("item").Length()
}

func TestBuildFeedEmptyList(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	body, err := BuildFeed(nil, "octocat", "https://example.com/", now)
	require.NoError(t, err)

	doc := parseRSS(t, body)
	require.Equal(t, "2.0", doc.Version)
	require.Equal(t, "octocat's updates", doc.Channel.Title)
	require.Equal(t, "https://example.com/", doc.Channel.Link)
	require.Equal(t, "Latest updated repositories", doc.Channel.Description)
	require.Empty(t, doc.Channel.Items)
	require.Zero(t, countItems(t, body))
}

func TestBuildFeedOrdersAndEscapes(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	older := repoAt("older", 0, now.Add(-48*time.Hour))
	newer := repoAt("newer", 0, now.Add(-time.Hour))
	newer.Description = `Fish & chips <script>`
	broken := github.Repository{Name: "broken", HTMLURL: "https://github.com/octocat/broken", PushedAt: "not-a-date"}

	body, err := BuildFeed([]github.Repository{older, broken, newer}, "octocat", "https://example.com/", now)
	require.NoError(t, err)
	require.NotContains(t, body, "<script>")
	require.Contains(t, body, "Fish &amp; chips &lt;script&gt;")

	doc := parseRSS(t, body)
	require.Len(t, doc.Channel.Items, 3)
	require.Equal(t, "newer", doc.Channel.Items[0].Title)
	require.Equal(t, "Fish & chips <script>", doc.Channel.Items[0].Description)
	require.Equal(t, "https://github.com/octocat/newer", doc.Channel.Items[0].GUID.Value)
	require.Equal(t, "true", doc.Channel.Items[0].GUID.IsPermaLink)
	require.Equal(t, "older", doc.Channel.Items[1].Title)
	require.Equal(t, "broken", doc.Channel.Items[2].Title)
	require.Equal(t, now.Format(time.RFC1123Z), doc.Channel.Items[2].PubDate)
}

func TestBuildFeedPublishesDescriptionOnly(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := repoAt("tool", 0, now)
	repo.Description = "  A small tool  "
	repo.Language = "Go"

	body, err := BuildFeed([]github.Repository{repo}, "octocat", "https://example.com/", now)
	require.NoError(t, err)

	doc := parseRSS(t, body)
	require.Len(t, doc.Channel.Items, 1)
	require.Equal(t, "A small tool", doc.Channel.Items[0].Description)
}

func TestBuildFeedFallsBackToSiteURL(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := github.Repository{Name: "orphan", PushedAt: now.Format(time.RFC3339)}

	body, err := BuildFeed([]github.Repository{repo}, "octocat", "https://example.com/", now)
	require.NoError(t, err)

	doc := parseRSS(t, body)
	require.Len(t, doc.Channel.Items, 1)
	require.Equal(t, "https://example.com/", doc.Channel.Items[0].Link)
	require.Equal(t, "https://example.com/", doc.Channel.Items[0].GUID.Value)
	require.Equal(t, "true", doc.Channel.Items[0].GUID.IsPermaLink)
}

func TestFeedServiceRender(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	source := &stubSource{repos: []github.Repository{repoAt("one", 0, now)}}
	svc := NewFeedService(source, WithFeedClock(func() time.Time { return now }))

	body, err := svc.Render(context.Background(), "octocat", "https://example.com/")
	require.NoError(t, err)
	require.Equal(t, 1, countItems(t, body))

	source.err = errors.New("upstream down")
	_, err = svc.Render(context.Background(), "octocat", "https://example.com/")
	require.EqualError(t, err, "upstream down")
}

func TestBuildFeedProperties(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("feed holds the newest repositories in descending order", prop.ForAll(
		func(repos []github.Repository) bool {
			body, err := BuildFeed(repos, "octocat", "https://example.com/", now)
			if err != nil {
				return false
			}
			var doc rssDocument
			if xml.Unmarshal([]byte(body), &doc) != nil {
				return false
			}

			want := len(repos)
			if want > MaxFeedItems {
				want = MaxFeedItems
			}
			if len(doc.Channel.Items) != want {
				return false
			}

			var prev time.Time
			for i, item := range doc.Channel.Items {
				ts, err := time.Parse(time.RFC1123Z, item.PubDate)
				if err != nil {
					return false
				}
				if i > 0 && ts.After(prev) {
					return false
				}
				prev = ts
			}
			return true
		},
		gen.SliceOf(genRepository()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
