package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/github"
)

// MaxSearchResults caps the number of search hits returned.
const MaxSearchResults = 10

// RepoSource supplies repository listings, cached or fresh.
type RepoSource interface {
	Repos(ctx context.Context, username string) ([]github.Repository, error)
}

// SearchResult is the public projection of a matching repository.
type SearchResult struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Stars       int      `json:"stars"`
	Forks       int      `json:"forks"`
	UpdatedAt   string   `json:"updated_at"`
	Topics      []string `json:"topics"`
}

// SearchService answers free text queries over an account's repositories.
type SearchService struct {
	source RepoSource
}

// NewSearchService constructs a SearchService.
func NewSearchService(source RepoSource) *SearchService {
	return &SearchService{source: source}
}

// Search runs query against username's repositories. A blank query returns no
// results without touching the upstream.
func (s *SearchService) Search(ctx context.Context, username, query string) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []SearchResult{}, nil
	}
	repos, err := s.source.Repos(ctx, username)
	if err != nil {
		return nil, err
	}
	return SearchRepositories(repos, query), nil
}

// SearchRepositories matches query case-insensitively against each
// repository's name, description, language and topics. Hits are ordered by
// stars then last update, both descending, and truncated to MaxSearchResults.
// The input slice is not modified.
func SearchRepositories(repos []github.Repository, query string) []SearchResult {
	needle := strings.ToLower(strings.TrimSpace(query))
	results := []SearchResult{}
	if needle == "" {
		return results
	}

	matches := make([]github.Repository, 0, len(repos))
	for _, repo := range repos {
		if strings.Contains(haystack(repo), needle) {
			matches = append(matches, repo)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].StargazersCount != matches[j].StargazersCount {
			return matches[i].StargazersCount > matches[j].StargazersCount
		}
		return lastUpdate(matches[i]).After(lastUpdate(matches[j]))
	})

	if len(matches) > MaxSearchResults {
		matches = matches[:MaxSearchResults]
	}
	for _, repo := range matches {
		results = append(results, toSearchResult(repo))
	}
	return results
}

func haystack(repo github.Repository) string {
	parts := make([]string, 0, 3+len(repo.Topics))
	parts = append(parts, repo.Name, repo.Description, repo.Language)
	parts = append(parts, repo.Topics...)
	return strings.ToLower(strings.Join(parts, " "))
}

func toSearchResult(repo github.Repository) SearchResult {
	topics := append([]string{}, repo.Topics...)
	return SearchResult{
		Name:        repo.Name,
		URL:         repo.HTMLURL,
		Description: repo.Description,
		Language:    repo.Language,
		Stars:       repo.StargazersCount,
		Forks:       repo.ForksCount,
		UpdatedAt:   repo.LastUpdate(),
		Topics:      topics,
	}
}

// lastUpdate orders unparsable timestamps before every valid one.
func lastUpdate(repo github.Repository) time.Time {
	ts, _ := repo.LastUpdateTime()
	return ts
}
