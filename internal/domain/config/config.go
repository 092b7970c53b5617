package config

import (
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domainerr "techblog/internal/domain/errors"
)

type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Content    ContentConfig    `yaml:"content"`
	Assets     AssetsConfig     `yaml:"assets"`
	OpenSource OpenSourceConfig `yaml:"open_source"`
	Serve      ServeConfig      `yaml:"serve"`
	Build      BuildConfig      `yaml:"build"`
	Log        LogConfig        `yaml:"log"`
}

type SiteConfig struct {
	Name            string     `yaml:"name"`
	Description     string     `yaml:"description"`
	Author          string     `yaml:"author"`
	Language        string     `yaml:"language"`
	PostsPerPage    int        `yaml:"posts_per_page"`
	Nav             []NavLink  `yaml:"nav"`
	Labels          Labels     `yaml:"labels"`
	Social          SocialLink `yaml:"social"`
	FooterAboutText string     `yaml:"footer_about_text"`
}

type NavLink struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

type SocialLink struct {
	GitHub string `yaml:"github"`
	X      string `yaml:"x"`
}

// Labels holds the user-facing strings of the theme.
type Labels struct {
	HomeTitle       string `yaml:"home_title"`
	HomeSubtitle    string `yaml:"home_subtitle"`
	HomeBadge       string `yaml:"home_badge"`
	ReadMore        string `yaml:"read_more"`
	NoDate          string `yaml:"no_date"`
	BackToHome      string `yaml:"back_to_home"`
	PreviousPage    string `yaml:"previous_page"`
	NextPage        string `yaml:"next_page"`
	Page            string `yaml:"page"`
	StatsTitle      string `yaml:"stats_title"`
	ReadTime        string `yaml:"read_time"`
	Words           string `yaml:"words"`
	Headings        string `yaml:"headings"`
	CodeBlocks      string `yaml:"code_blocks"`
	Images          string `yaml:"images"`
	Minutes         string `yaml:"minutes"`
	TOCTitle        string `yaml:"toc_title"`
	LastUpdated     string `yaml:"last_updated"`
	NoPostsForTag   string `yaml:"no_posts_for_tag"`
	OpenSourceTitle string `yaml:"open_source_title"`
}

type ContentConfig struct {
	PostsDir string `yaml:"posts_dir"`
	PagesDir string `yaml:"pages_dir"`
}

// TrustedHost is a media origin the image layer may fetch from. Only paths
// below PathPrefix are considered trusted.
type TrustedHost struct {
	Host       string `yaml:"host"`
	PathPrefix string `yaml:"path_prefix"`
}

type AssetsConfig struct {
	TrustedHosts []TrustedHost `yaml:"trusted_hosts"`
	// DefaultBase receives bare relative references. Empty means the first
	// trusted host.
	DefaultBase string `yaml:"default_base"`
}

// Covers reports whether u is an http(s) URL below one of the trusted hosts.
func (a AssetsConfig) Covers(u *url.URL) bool {
	if u == nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	p := path.Clean("/" + u.Path)
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	for _, h := range a.TrustedHosts {
		prefix := h.PathPrefix
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		if strings.EqualFold(u.Hostname(), strings.TrimSpace(h.Host)) && strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

type OpenSourceConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Owner      string        `yaml:"owner"`
	Repo       string        `yaml:"repo"`
	Branch     string        `yaml:"branch"`
	RepoURL    string        `yaml:"repo_url"`
	APIBase    string        `yaml:"api_base"`
	Timeout    time.Duration `yaml:"timeout"`
	CachePath  string        `yaml:"cache_path"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
	SiteCommit string        `yaml:"site_commit"`
}

type ServeConfig struct {
	Addr       string `yaml:"addr"`
	LiveReload bool   `yaml:"live_reload"`
}

type BuildConfig struct {
	PublicDir string `yaml:"public_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	name := "sondt's Blog"
	return Config{
		Site: SiteConfig{
			Name:         name,
			Description:  "A professional blog about software development and technology",
			Author:       "nosiaht",
			Language:     "en",
			PostsPerPage: 4,
			Nav: []NavLink{
				{Label: "Github", Href: "https://github.com/sondt99/Tech-Blog"},
				{Label: "About", Href: "/about"},
				{Label: "Archivement", Href: "/archivement"},
			},
			Labels: Labels{
				HomeTitle:       "Welcome to " + name,
				HomeSubtitle:    "Something about infosec!...",
				HomeBadge:       "Security | Systems | Research",
				ReadMore:        "Read more",
				NoDate:          "No date",
				BackToHome:      "Back to home",
				PreviousPage:    "Previous Page",
				NextPage:        "Next Page",
				Page:            "Page",
				StatsTitle:      "Article stats",
				ReadTime:        "Read time",
				Words:           "Words",
				Headings:        "Headings",
				CodeBlocks:      "Code blocks",
				Images:          "Images",
				Minutes:         "min",
				TOCTitle:        "Contents",
				LastUpdated:     "Last updated:",
				NoPostsForTag:   "No posts found for this tag.",
				OpenSourceTitle: "Open-source",
			},
			Social: SocialLink{
				GitHub: "https://github.com/sondt99",
				X:      "https://x.com/_sondt_",
			},
			FooterAboutText: "Sharing In-Depth Insights About Security, CTF Challenges, and Tech Architecture.",
		},
		Content: ContentConfig{
			PostsDir: "content",
			PagesDir: "content/pages",
		},
		Assets: AssetsConfig{
			TrustedHosts: []TrustedHost{
				{Host: "hackmd.io", PathPrefix: "/_uploads/"},
				{Host: "tmdpc.vn", PathPrefix: "/media/"},
			},
		},
		OpenSource: OpenSourceConfig{
			Enabled:   true,
			Owner:     "sondt99",
			Repo:      "Tech-Blog",
			Branch:    "main",
			RepoURL:   "https://github.com/sondt99/Tech-Blog",
			APIBase:   "https://api.github.com",
			Timeout:   10 * time.Second,
			CachePath: ".techblog/status.db",
			CacheTTL:  time.Hour,
		},
		Serve: ServeConfig{
			Addr: ":8080",
		},
		Build: BuildConfig{
			PublicDir: "public",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Name) == "" {
		ve.Add("site.name", "must not be empty")
	}
	if c.Site.PostsPerPage <= 0 {
		ve.Add("site.posts_per_page", "must be positive")
	}

	if strings.TrimSpace(c.Content.PostsDir) == "" {
		ve.Add("content.posts_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Content.PagesDir) == "" {
		ve.Add("content.pages_dir", "must not be empty")
	}

	if len(c.Assets.TrustedHosts) == 0 {
		ve.Add("assets.trusted_hosts", "must list at least one host")
	}
	for _, h := range c.Assets.TrustedHosts {
		host := strings.TrimSpace(h.Host)
		if host == "" || strings.ContainsAny(host, "/:") {
			ve.Add("assets.trusted_hosts", "host must be a bare hostname: "+h.Host)
		}
		if !strings.HasPrefix(h.PathPrefix, "/") {
			ve.Add("assets.trusted_hosts", "path_prefix must start with '/': "+h.PathPrefix)
		}
	}
	if base := strings.TrimSpace(c.Assets.DefaultBase); base != "" {
		u, err := url.Parse(base)
		switch {
		case err != nil || !isValidAbsURL(base):
			ve.Add("assets.default_base", "must be a valid absolute URL")
		case !c.Assets.Covers(u):
			ve.Add("assets.default_base", "must lie below one of assets.trusted_hosts")
		}
	}

	if c.OpenSource.Enabled {
		if strings.TrimSpace(c.OpenSource.Owner) == "" {
			ve.Add("open_source.owner", "must not be empty")
		}
		if strings.TrimSpace(c.OpenSource.Repo) == "" {
			ve.Add("open_source.repo", "must not be empty")
		}
		if strings.TrimSpace(c.OpenSource.Branch) == "" {
			ve.Add("open_source.branch", "must not be empty")
		}
		if !isValidAbsURL(c.OpenSource.APIBase) {
			ve.Add("open_source.api_base", "must be a valid absolute URL")
		}
		if c.OpenSource.Timeout <= 0 {
			ve.Add("open_source.timeout", "must be positive")
		}
	}

	if strings.TrimSpace(c.Serve.Addr) == "" {
		ve.Add("serve.addr", "must not be empty")
	}
	if strings.TrimSpace(c.Build.PublicDir) == "" {
		ve.Add("build.public_dir", "must not be empty")
	}

	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "", "console", "json", "pretty":
	default:
		ve.Add("log.format", "must be 'console', 'json' or 'pretty'")
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	// fields present in the file override the defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil && os.IsNotExist(err) {
		cfg = Default()
		return cfg, cfg.Validate()
	}
	return cfg, err
}
