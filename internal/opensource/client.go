package opensource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"techblog/internal/domain/config"
)

const (
	upstreamFailedCode = "OPEN_SOURCE_UPSTREAM_FAILED"
	userAgent          = "Tech-Blog"
	maxBodyBytes       = 4 << 20
)

// Client queries the GitHub REST API for the configured repository.
type Client struct {
	HTTP    *http.Client
	APIBase string
	Token   string
	Repo    Repo
	Now     func() time.Time
}

func NewClient(cfg config.OpenSourceConfig, token string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: cfg.Timeout},
		APIBase: strings.TrimRight(cfg.APIBase, "/"),
		Token:   token,
		Repo: Repo{
			Owner:  cfg.Owner,
			Repo:   cfg.Repo,
			Branch: cfg.Branch,
			URL:    cfg.RepoURL,
		},
		Now: time.Now,
	}
}

type commitResponse struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message   string `json:"message"`
		Committer *struct {
			Date string `json:"date"`
		} `json:"committer"`
		Author *struct {
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

type compareResponse struct {
	Status   string `json:"status"`
	AheadBy  *int   `json:"ahead_by"`
	BehindBy *int   `json:"behind_by"`
	HTMLURL  string `json:"html_url"`
}

// Fetch loads the latest branch commit and, when siteCommit is a plausible
// hash, compares it with the branch. Only the latest commit lookup can fail
// the call; a failed comparison is reported with status unknown.
func (c *Client) Fetch(ctx context.Context, siteCommit string) (Status, error) {
	var latest commitResponse
	if err := c.get(ctx, c.repoPath("commits", c.Repo.Branch), &latest); err != nil {
		return Status{}, goerrors.Wrap(err, goerrors.CategoryExternal, "failed to fetch latest commit").
			WithTextCode(upstreamFailedCode)
	}

	st := Status{
		Repo: c.Repo,
		LatestCommit: Commit{
			SHA:     latest.SHA,
			URL:     latest.HTMLURL,
			Message: latest.Commit.Message,
			Date:    commitDate(latest),
		},
		CheckedAt: c.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}

	siteCommit = strings.TrimSpace(siteCommit)
	if !LikelySHA(siteCommit) {
		return st, nil
	}
	st.SiteCommit = &siteCommit

	var cmp compareResponse
	if err := c.get(ctx, c.repoPath("compare", siteCommit+"..."+c.Repo.Branch), &cmp); err != nil {
		st.Comparison = &Comparison{Status: StatusUnknown}
		return st, nil
	}

	status := cmp.Status
	if status == "" {
		status = StatusUnknown
	}
	st.Comparison = &Comparison{
		Status:   status,
		AheadBy:  cmp.AheadBy,
		BehindBy: cmp.BehindBy,
		URL:      optional(cmp.HTMLURL),
	}
	return st, nil
}

func (c *Client) repoPath(kind, ref string) string {
	return fmt.Sprintf("%s/repos/%s/%s/%s/%s",
		c.APIBase,
		url.PathEscape(c.Repo.Owner),
		url.PathEscape(c.Repo.Repo),
		kind,
		ref,
	)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("github: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("github: %s: unexpected status %d", endpoint, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("github: decode: %w", err)
	}
	return nil
}

func (c *Client) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func commitDate(r commitResponse) *string {
	if r.Commit.Committer != nil && r.Commit.Committer.Date != "" {
		return optional(r.Commit.Committer.Date)
	}
	if r.Commit.Author != nil {
		return optional(r.Commit.Author.Date)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
