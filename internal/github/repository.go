package github

import "time"

// Repository is the subset of the upstream repository record the service keeps.
type Repository struct {
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	HTMLURL         string   `json:"html_url"`
	Description     string   `json:"description"`
	Homepage        string   `json:"homepage"`
	Language        string   `json:"language"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	Topics          []string `json:"topics"`
	Fork            bool     `json:"fork"`
	Archived        bool     `json:"archived"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	PushedAt        string   `json:"pushed_at"`
}

// LastUpdate returns the push timestamp, falling back to the metadata update time.
func (r Repository) LastUpdate() string {
	if r.PushedAt != "" {
		return r.PushedAt
	}
	return r.UpdatedAt
}

// LastUpdateTime parses LastUpdate as RFC 3339. ok is false when the value is
// missing or malformed.
func (r Repository) LastUpdateTime() (t time.Time, ok bool) {
	raw := r.LastUpdate()
	if raw == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
