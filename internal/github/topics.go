package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/metrics"
)

type topicsResponse struct {
	Names []string `json:"names"`
}

// enrichTopics fills Topics for repositories that arrived without them. Each
// lookup is best-effort: a failure leaves an empty list and is only logged.
func (c *Client) enrichTopics(ctx context.Context, username string, repos []Repository) {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.cfg.TopicsConcurrency)

	for i := range repos {
		if len(repos[i].Topics) > 0 {
			continue
		}
		repo := &repos[i]
		group.Go(func() error {
			topics, err := c.fetchTopics(groupCtx, ownerOf(*repo, username), repo.Name)
			if err != nil {
				metrics.TopicEnrichmentFailures.Inc()
				c.log.Warn("topic enrichment failed",
					zap.String("repository", repo.Name),
					zap.Error(err),
				)
				repo.Topics = []string{}
				return nil
			}
			repo.Topics = topics
			return nil
		})
	}
	_ = group.Wait()
}

func (c *Client) fetchTopics(ctx context.Context, owner, name string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.TopicsTimeout)
	defer cancel()

	endpoint := c.cfg.BaseURL + "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name) + "/topics"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return nil, fmt.Errorf("topics returned %d", resp.StatusCode)
	}

	var payload topicsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode topics: %w", err)
	}
	if payload.Names == nil {
		return []string{}, nil
	}
	return payload.Names, nil
}

func ownerOf(repo Repository, fallback string) string {
	if owner, _, ok := strings.Cut(repo.FullName, "/"); ok && owner != "" {
		return owner
	}
	return fallback
}
