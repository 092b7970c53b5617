package build

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"techblog/internal/app"
	"techblog/internal/domain/site"
	"techblog/internal/logging"
	"techblog/internal/render"
)

// Builder exports every route of the site as static HTML.
type Builder struct {
	Composer  *app.Composer
	Renderer  render.Renderer
	Routes    *app.RouteBuilder
	PublicDir string
	Log       logging.Logger
}

type Result struct {
	Pages int
	Posts int
	Tags  int
}

func (b *Builder) Run(ctx context.Context) (*Result, error) {
	log := logging.OrNoOp(b.Log)

	routes, err := b.Routes.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect routes: %w", err)
	}

	outDir := b.PublicDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir public: %w", err)
	}

	res := &Result{}
	for _, r := range routes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := b.renderRoute(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", r, err)
		}
		if err := writeFile(outDir, r.OutPath, data); err != nil {
			return nil, fmt.Errorf("write %s: %w", r.OutPath, err)
		}
		log.Debug("build: wrote page", "route", r.String())

		res.Pages++
		switch r.Kind {
		case site.RoutePost:
			res.Posts++
		case site.RouteTag:
			res.Tags++
		}
	}

	if err := copyStaticAssets(render.StaticFS(), filepath.Join(outDir, "static")); err != nil {
		return nil, fmt.Errorf("copy static assets: %w", err)
	}

	log.Info("build: export complete", "dir", outDir, "pages", res.Pages, "posts", res.Posts, "tags", res.Tags)
	return res, nil
}

func (b *Builder) renderRoute(ctx context.Context, r site.Route) ([]byte, error) {
	switch r.Kind {
	case site.RouteIndex, site.RoutePage:
		page, err := b.Composer.Home(ctx, r.Page)
		if err != nil {
			return nil, err
		}
		return b.Renderer.RenderHome(ctx, page)
	case site.RoutePost:
		page, err := b.Composer.Post(ctx, r.Slug)
		if err != nil {
			return nil, err
		}
		return b.Renderer.RenderPost(ctx, page)
	case site.RouteTag:
		page, err := b.Composer.Tag(ctx, r.Key)
		if err != nil {
			return nil, err
		}
		return b.Renderer.RenderTag(ctx, page)
	case site.RouteStatic:
		page, err := b.Composer.Page(ctx, r.Slug)
		if err != nil {
			return nil, err
		}
		return b.Renderer.RenderPage(ctx, page)
	case site.RouteNotFound:
		return b.Renderer.RenderNotFound(ctx, b.Composer.NotFound("/404"))
	default:
		return nil, fmt.Errorf("unknown route kind %q", r.Kind)
	}
}

// writeFile refuses paths that would leave root.
func writeFile(root, rel string, data []byte) error {
	full := filepath.Join(root, filepath.FromSlash(rel))
	back, err := filepath.Rel(root, full)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q escapes %s", rel, root)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func copyStaticAssets(src fs.FS, dst string) error {
	return fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		in, err := fs.ReadFile(src, path)
		if err != nil {
			return err
		}
		return writeFile(dst, path, in)
	})
}
