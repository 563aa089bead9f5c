package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/github"
)

// MaxFeedItems caps the number of entries rendered into the RSS feed.
const MaxFeedItems = 10

const feedDescription = "Latest updated repositories"

// FeedService renders an RSS 2.0 document of recently updated repositories.
type FeedService struct {
	source RepoSource
	now    func() time.Time
}

// FeedOption customises a FeedService.
type FeedOption func(*FeedService)

// WithFeedClock overrides the clock used for fallback publication dates.
func WithFeedClock(now func() time.Time) FeedOption {
	return func(s *FeedService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewFeedService constructs a FeedService.
func NewFeedService(source RepoSource, opts ...FeedOption) *FeedService {
	s := &FeedService{source: source, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render fetches username's repositories and renders them as RSS. siteURL is
// used as the channel link.
func (s *FeedService) Render(ctx context.Context, username, siteURL string) (string, error) {
	repos, err := s.source.Repos(ctx, username)
	if err != nil {
		return "", err
	}
	return BuildFeed(repos, username, siteURL, s.now())
}

// BuildFeed renders the MaxFeedItems most recently updated repositories.
// Timestamps that fail to parse are published as now.
func BuildFeed(repos []github.Repository, username, siteURL string, now time.Time) (string, error) {
	ordered := append([]github.Repository(nil), repos...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return lastUpdate(ordered[i]).After(lastUpdate(ordered[j]))
	})
	if len(ordered) > MaxFeedItems {
		ordered = ordered[:MaxFeedItems]
	}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s's updates", username),
		Link:        &feeds.Link{Href: siteURL},
		Description: feedDescription,
		Updated:     now,
	}

	for _, repo := range ordered {
		published, ok := repo.LastUpdateTime()
		if !ok {
			published = now
		}
		link := repo.HTMLURL
		if link == "" {
			link = siteURL
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       repo.Name,
			Link:        &feeds.Link{Href: link},
			Description: strings.TrimSpace(repo.Description),
			Id:          link,
			IsPermaLink: "true",
			Created:     published,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return "", fmt.Errorf("render rss: %w", err)
	}
	return rss, nil
}
