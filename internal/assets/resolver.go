// Package assets maps media references found in content onto the trusted
// hosts the image layer is allowed to fetch from.
package assets

import (
	"net/url"
	"path"
	"strings"

	"techblog/internal/domain/config"
)

type Resolver struct {
	hosts []config.TrustedHost
	base  *url.URL
}

func NewResolver(cfg config.AssetsConfig) *Resolver {
	r := &Resolver{}
	for _, h := range cfg.TrustedHosts {
		host := strings.ToLower(strings.TrimSpace(h.Host))
		if host == "" {
			continue
		}
		prefix := h.PathPrefix
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		r.hosts = append(r.hosts, config.TrustedHost{Host: host, PathPrefix: prefix})
	}

	// an untrusted base falls back to the first trusted host
	if b := strings.TrimSpace(cfg.DefaultBase); b != "" {
		if u, err := url.Parse(b); err == nil && cfg.Covers(u) {
			r.base = &url.URL{
				Scheme: "https",
				Host:   strings.ToLower(u.Hostname()),
				Path:   path.Clean("/" + u.Path),
			}
		}
	}
	if r.base == nil && len(r.hosts) > 0 {
		r.base = &url.URL{Scheme: "https", Host: r.hosts[0].Host, Path: r.hosts[0].PathPrefix}
	}
	return r
}

// Resolve returns a fully qualified URL for ref. Empty input yields "".
// References that are absolute but not trusted, that use a non-http scheme,
// or that are already https on a trusted host come back unchanged.
func (r *Resolver) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "#") {
		return ref
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	switch {
	case u.Scheme == "http" || u.Scheme == "https":
		return r.absolute(ref, u)
	case u.Scheme != "":
		return ref
	case u.Host != "":
		// protocol relative
		return r.absolute(ref, u)
	}

	return r.relative(ref, u)
}

// Trusted reports whether ref points at one of the trusted hosts.
func (r *Resolver) Trusted(ref string) bool {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	_, ok := r.match(u.Hostname(), u.EscapedPath())
	return ok
}

func (r *Resolver) absolute(ref string, u *url.URL) string {
	h, ok := r.match(u.Hostname(), u.EscapedPath())
	if !ok {
		return ref
	}
	if u.Scheme == "https" {
		return ref
	}
	out := url.URL{
		Scheme:   "https",
		Host:     h.Host,
		Path:     u.Path,
		RawPath:  u.RawPath,
		RawQuery: u.RawQuery,
		Fragment: u.Fragment,
	}
	return out.String()
}

func (r *Resolver) relative(ref string, u *url.URL) string {
	// rooting the path first keeps ".." from climbing out of a prefix
	clean := path.Clean("/" + u.Path)

	for _, h := range r.hosts {
		if strings.HasPrefix(clean, h.PathPrefix) {
			return r.absolute(ref, &url.URL{
				Host:     h.Host,
				Path:     clean,
				RawQuery: u.RawQuery,
				Fragment: u.Fragment,
			})
		}
	}

	if r.base == nil {
		return ref
	}
	joined := *r.base
	joined.Path = path.Join(r.base.Path, clean)
	joined.RawPath = ""
	joined.RawQuery = u.RawQuery
	joined.Fragment = u.Fragment
	if h, ok := r.match(joined.Hostname(), joined.EscapedPath()); ok {
		joined.Scheme = "https"
		joined.Host = h.Host
	}
	return joined.String()
}

func (r *Resolver) match(host, p string) (config.TrustedHost, bool) {
	host = strings.ToLower(host)
	for _, h := range r.hosts {
		if host == h.Host && strings.HasPrefix(p, h.PathPrefix) {
			return h, true
		}
	}
	return config.TrustedHost{}, false
}
