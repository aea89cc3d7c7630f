// Package gitmeta fetches build provenance for the footer: the most recent
// commit of the public project repository. Best effort only; any failure is
// reported as an error and callers render a "no information" state.
package gitmeta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.github.com"

type Commit struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	HTMLURL string    `json:"html_url"`
}

type Client struct {
	repo    string
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithBaseURL points the client at a different API host, for GitHub
// Enterprise installations and tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// NewClient builds a client for the given "owner/name" repository slug.
func NewClient(repo string, opts ...Option) *Client {
	c := &Client{
		repo:    repo,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type commitResponse struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	HTMLURL string `json:"html_url"`
}

// LatestCommit performs one GET for the single most recent commit. No retry,
// no caching, no auth.
func (c *Client) LatestCommit(ctx context.Context) (*Commit, error) {
	url := fmt.Sprintf("%s/repos/%s/commits?per_page=1", c.baseURL, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github responded %d", resp.StatusCode)
	}

	var commits []commitResponse
	if err := json.NewDecoder(resp.Body).Decode(&commits); err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, errors.New("repository has no commits")
	}

	first := commits[0]
	return &Commit{
		SHA:     first.SHA,
		Message: first.Commit.Message,
		Date:    first.Commit.Author.Date,
		HTMLURL: first.HTMLURL,
	}, nil
}
