// Package opensource reports how the deployed site compares with the latest
// commit of its public repository.
package opensource

import (
	"os"
	"regexp"
	"strings"
)

// Comparison statuses as reported by the GitHub compare API.
const (
	StatusIdentical = "identical"
	StatusAhead     = "ahead"
	StatusBehind    = "behind"
	StatusDiverged  = "diverged"
	StatusUnknown   = "unknown"
)

type Repo struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
	URL    string `json:"url"`
}

type Commit struct {
	SHA     string  `json:"sha"`
	URL     string  `json:"url"`
	Message string  `json:"message"`
	Date    *string `json:"date"`
}

type Comparison struct {
	Status   string  `json:"status"`
	AheadBy  *int    `json:"aheadBy"`
	BehindBy *int    `json:"behindBy"`
	URL      *string `json:"url"`
}

type Status struct {
	Repo         Repo        `json:"repo"`
	LatestCommit Commit      `json:"latestCommit"`
	SiteCommit   *string     `json:"siteCommit"`
	Comparison   *Comparison `json:"comparison"`
	CheckedAt    string      `json:"checkedAt"`
}

var shaPattern = regexp.MustCompile(`(?i)^[0-9a-f]{7,40}$`)

// LikelySHA reports whether s looks like an abbreviated or full commit hash.
func LikelySHA(s string) bool {
	return shaPattern.MatchString(strings.TrimSpace(s))
}

var (
	tokenEnvKeys      = []string{"GITHUB_TOKEN", "GITHUB_API_TOKEN", "GH_TOKEN"}
	siteCommitEnvKeys = []string{"NEXT_PUBLIC_SITE_COMMIT", "VERCEL_GIT_COMMIT_SHA", "GIT_COMMIT_SHA"}
)

// TokenFromEnv returns the first GitHub token found in the environment.
func TokenFromEnv() string {
	return firstEnv(os.Getenv, tokenEnvKeys)
}

// SiteCommit returns the commit the site was built from: the environment
// wins over the configured value.
func SiteCommit(configured string) string {
	return siteCommit(os.Getenv, configured)
}

func siteCommit(getenv func(string) string, configured string) string {
	if v := firstEnv(getenv, siteCommitEnvKeys); v != "" {
		return v
	}
	return strings.TrimSpace(configured)
}

func firstEnv(getenv func(string) string, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
