package app

import "github.com/Yusuf-Siddiqui-08/portfolio/internal/github"

// ClientConfig converts GitHubConfig to the github client representation.
func (c GitHubConfig) ClientConfig() github.Config {
	return github.Config{
		BaseURL:           c.APIBaseURL,
		Token:             c.Token,
		UserAgent:         c.UserAgent,
		PerPage:           c.PerPage,
		Sort:              c.Sort,
		Timeout:           c.Timeout,
		TopicsTimeout:     c.TopicsTimeout,
		MaxAttempts:       c.MaxAttempts,
		InitialBackoff:    c.InitialBackoff,
		EnrichTopics:      c.EnrichTopics,
		TopicsConcurrency: c.TopicsConcurrency,
	}
}
