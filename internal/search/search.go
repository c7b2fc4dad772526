// Package search lists candidate repositories through the GitHub search API.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Codegass/repodigger/internal/contract"
	"github.com/Codegass/repodigger/schema"
	"github.com/google/go-github/v74/github"
)

// perPage is the largest page size the search API accepts.
const perPage = 100

// GitHubSource is a contract.CandidateSource backed by the GitHub REST API.
type GitHubSource struct {
	client   *github.Client
	language string
	logger   *contract.Logger
}

var _ contract.CandidateSource = &GitHubSource{} // Compile-time check

// NewGitHubSource creates a source authenticated with token. A non-empty
// baseURL points the client at GitHub Enterprise or a test server.
func NewGitHubSource(token, baseURL, language string, logger *contract.Logger) (*GitHubSource, error) {
	client := github.NewClient(&http.Client{Timeout: time.Minute})
	if token != "" {
		client = client.WithAuthToken(token)
	}
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
		}
		client.BaseURL = u
	}
	return &GitHubSource{client: client, language: language, logger: logger}, nil
}

// Query builds the search expression for an organization.
func Query(org, language string, minStars int, cutoff time.Time) string {
	parts := []string{"org:" + org}
	if language != "" {
		parts = append(parts, "language:"+language)
	}
	parts = append(parts,
		"archived:false",
		"pushed:>"+cutoff.Format("2006-01-02"),
		fmt.Sprintf("stars:>=%d", minStars),
	)
	return strings.Join(parts, " ")
}

// Fetch pages through the search results until a page comes back with fewer
// than perPage repositories. A failing page is logged and ends the listing;
// whatever was gathered so far is returned, which may be nothing.
func (s *GitHubSource) Fetch(ctx context.Context, org string, minStars int, cutoff time.Time) ([]schema.RepositoryCandidate, error) {
	query := Query(org, s.language, minStars, cutoff)
	opts := &github.SearchOptions{
		Sort:        "updated",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: perPage, Page: 1},
	}

	var candidates []schema.RepositoryCandidate
	for {
		result, _, err := s.client.Search.Repositories(ctx, query, opts)
		if err != nil {
			s.logger.Errorf("Failed to retrieve repositories (page %d): %v", opts.Page, err)
			break
		}
		for _, repo := range result.Repositories {
			candidates = append(candidates, toCandidate(repo))
		}
		if len(result.Repositories) < perPage {
			break
		}
		opts.Page++
	}
	return candidates, nil
}

func toCandidate(repo *github.Repository) schema.RepositoryCandidate {
	return schema.RepositoryCandidate{
		Name:     repo.GetName(),
		CloneURL: repo.GetCloneURL(),
		Stars:    repo.GetStargazersCount(),
		PushedAt: repo.GetPushedAt().Time,
	}
}
