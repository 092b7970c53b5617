package main

import (
	"context"
	"fmt"

	"techblog/internal/app"
	"techblog/internal/assets"
	"techblog/internal/build"
	"techblog/internal/domain/config"
	"techblog/internal/logging"
	"techblog/internal/markdown"
	"techblog/internal/opensource"
	"techblog/internal/render"
	"techblog/internal/serve"
	"techblog/internal/store"
)

type site struct {
	logs     *logging.Provider
	repo     *store.Repository
	composer *app.Composer
	tpl      *render.TemplateRenderer
}

func newSite(cfg config.Config, liveReload bool) (*site, error) {
	logs, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	resolver := assets.NewResolver(cfg.Assets)
	pipeline := markdown.New(resolver, logs.Get("markdown"))
	repo := store.New(cfg.Content, pipeline, resolver, logs.Get("store"))

	tpl, err := render.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	composer := app.NewComposer(repo, app.ComposerOptions{
		Site:       cfg.Site,
		SiteCommit: opensource.SiteCommit(cfg.OpenSource.SiteCommit),
		OpenSource: cfg.OpenSource.Enabled,
		LiveReload: liveReload,
	})
	return &site{logs: logs, repo: repo, composer: composer, tpl: tpl}, nil
}

func serveCmd(ctx context.Context, cfg config.Config, addr string) error {
	s, err := newSite(cfg, cfg.Serve.LiveReload)
	if err != nil {
		return err
	}
	log := s.logs.Get("serve")

	var status serve.StatusSource
	if cfg.OpenSource.Enabled {
		client := opensource.NewClient(cfg.OpenSource, opensource.TokenFromEnv())
		var cache *opensource.Cache
		if cfg.OpenSource.CachePath != "" {
			cache, err = opensource.OpenCache(opensource.CacheOptions{
				Path: cfg.OpenSource.CachePath,
				TTL:  cfg.OpenSource.CacheTTL,
			})
			if err != nil {
				log.Warn("serve: status cache disabled", "error", err)
				cache = nil
			} else {
				defer cache.Close()
			}
		}
		status = opensource.NewService(client, cache, s.logs.Get("opensource"))
	}

	srv, err := serve.New(serve.Options{
		Config:   cfg,
		Composer: s.composer,
		Renderer: s.tpl,
		Status:   status,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.ListenAndServe(ctx, addr)
}

func buildCmd(ctx context.Context, cfg config.Config) error {
	s, err := newSite(cfg, false)
	if err != nil {
		return err
	}
	b := &build.Builder{
		Composer:  s.composer,
		Renderer:  s.tpl,
		Routes:    &app.RouteBuilder{Source: s.repo, PerPage: cfg.Site.PostsPerPage, Log: s.logs.Get("routes")},
		PublicDir: cfg.Build.PublicDir,
		Log:       s.logs.Get("build"),
	}
	_, err = b.Run(ctx)
	return err
}
