package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/github"
)

func TestSearchRepositoriesMatchesAcrossFields(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	repos := []github.Repository{
		repoAt("alpha", 1, base),
		{Name: "beta", Description: "A GoLang toolkit", StargazersCount: 3, PushedAt: base.Format(time.RFC3339)},
		{Name: "gamma", Language: "Go", StargazersCount: 3, PushedAt: base.Add(time.Hour).Format(time.RFC3339)},
		repoAt("delta", 10, base, "golang", "cli"),
		repoAt("epsilon", 100, base, "python"),
	}

	results := SearchRepositories(repos, "  GO ")
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	require.Equal(t, []string{"delta", "gamma", "beta"}, names)
	require.Equal(t, []string{"golang", "cli"}, results[0].Topics)
	require.Equal(t, "https://github.com/octocat/delta", results[0].URL)
}

func TestSearchRepositoriesNoMatch(t *testing.T) {
	repos := []github.Repository{repoAt("alpha", 1, time.Now())}
	results := SearchRepositories(repos, "zzz")
	require.NotNil(t, results)
	require.Empty(t, results)
}

func TestSearchRepositoriesTruncates(t *testing.T) {
	var repos []github.Repository
	for i := 0; i < 25; i++ {
		repos = append(repos, repoAt("repo", i, time.Now()))
	}
	results := SearchRepositories(repos, "repo")
	require.Len(t, results, MaxSearchResults)
	require.Equal(t, 24, results[0].Stars)
}

func TestSearchServiceBlankQuerySkipsUpstream(t *testing.T) {
	source := &stubSource{err: errors.New("should not be called")}
	results, err := NewSearchService(source).Search(context.Background(), "octocat", "   ")
	require.NoError(t, err)
	require.Empty(t, results)
	require.Zero(t, source.calls)
}

func TestSearchServicePropagatesFetchError(t *testing.T) {
	failure := &github.FetchError{Kind: github.KindTimeout, Message: "Request timed out"}
	_, err := NewSearchService(&stubSource{err: failure}).Search(context.Background(), "octocat", "go")
	require.ErrorIs(t, err, failure)
}

func genRepository() gopter.Gen {
	return gen.Struct(reflect.TypeOf(github.Repository{}), map[string]gopter.Gen{
		"Name":            gen.OneConstOf("portfolio", "goose", "Rusty", "dotfiles", "blog"),
		"Description":     gen.OneConstOf("", "A Go service", "notes", "RSS reader", "GOLANG tools"),
		"Language":        gen.OneConstOf("", "Go", "Rust", "Python", "HTML"),
		"StargazersCount": gen.IntRange(0, 50),
		"Topics":          gen.SliceOfN(2, gen.OneConstOf("go", "web", "cli", "feeds", "rust")),
		"PushedAt": gen.Int64Range(1_500_000_000, 1_800_000_000).Map(func(v int64) string {
			return time.Unix(v, 0).UTC().Format(time.RFC3339)
		}),
	})
}

func TestSearchRepositoriesProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("results are bounded, matching and ordered", prop.ForAll(
		func(repos []github.Repository, query string) bool {
			snapshot := make([]github.Repository, len(repos))
			copy(snapshot, repos)

			results := SearchRepositories(repos, query)
			if !reflect.DeepEqual(snapshot, repos) {
				return false
			}

			needle := strings.ToLower(query)
			expected := 0
			for _, repo := range repos {
				if strings.Contains(haystack(repo), needle) {
					expected++
				}
			}
			if expected > MaxSearchResults {
				expected = MaxSearchResults
			}
			if len(results) != expected {
				return false
			}

			for i, r := range results {
				text := strings.ToLower(strings.Join(append([]string{r.Name, r.Description, r.Language}, r.Topics...), " "))
				if !strings.Contains(text, needle) {
					return false
				}
				if i > 0 {
					prev := results[i-1]
					if prev.Stars < r.Stars {
						return false
					}
					if prev.Stars == r.Stars && prev.UpdatedAt < r.UpdatedAt {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(genRepository()),
		gen.OneConstOf("go", "RUST", "feeds", "o", "nothing-matches"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
