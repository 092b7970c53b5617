package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"techblog/internal/app"
	domainerr "techblog/internal/domain/errors"
	"techblog/internal/logging"
	"techblog/internal/opensource"
	"techblog/internal/render"
)

const statusCacheControl = "s-maxage=3600, stale-while-revalidate=86400"

// StatusSource answers the open-source widget. Nil disables the endpoint.
type StatusSource interface {
	Status(ctx context.Context, siteCommit string) (opensource.Status, error)
}

type Handler struct {
	composer *app.Composer
	tpl      render.Renderer
	status   StatusSource
	hub      *Hub
	log      logging.Logger
}

func NewHandler(composer *app.Composer, tpl render.Renderer, status StatusSource, hub *Hub, logger logging.Logger) *Handler {
	return &Handler{
		composer: composer,
		tpl:      tpl,
		status:   status,
		hub:      hub,
		log:      logging.OrNoOp(logger),
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.StaticFS("/static", http.FS(render.StaticFS()))
	r.GET("/", h.home)
	r.GET("/page/:page", h.homePage)
	r.GET("/posts/:slug", h.post)
	r.GET("/tags/:tag", h.tag)
	r.GET("/api/open-source-status", h.openSourceStatus)
	if h.hub != nil {
		r.GET("/dev/events", h.events)
	}
	r.GET("/:slug", h.page)
	r.NoRoute(h.notFound)
}

func (h *Handler) home(c *gin.Context) {
	h.renderHome(c, 1)
}

func (h *Handler) homePage(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		h.notFound(c)
		return
	}
	if n == 1 {
		c.Redirect(http.StatusTemporaryRedirect, "/")
		return
	}
	h.renderHome(c, n)
}

func (h *Handler) renderHome(c *gin.Context, n int) {
	ctx := c.Request.Context()
	page, err := h.composer.Home(ctx, n)
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.tpl.RenderHome(ctx, page)
	h.write(c, out, err)
}

func (h *Handler) post(c *gin.Context) {
	ctx := c.Request.Context()
	page, err := h.composer.Post(ctx, c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.tpl.RenderPost(ctx, page)
	h.write(c, out, err)
}

func (h *Handler) tag(c *gin.Context) {
	ctx := c.Request.Context()
	page, err := h.composer.Tag(ctx, c.Param("tag"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.tpl.RenderTag(ctx, page)
	h.write(c, out, err)
}

func (h *Handler) page(c *gin.Context) {
	ctx := c.Request.Context()
	page, err := h.composer.Page(ctx, c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out, err := h.tpl.RenderPage(ctx, page)
	h.write(c, out, err)
}

func (h *Handler) openSourceStatus(c *gin.Context) {
	if h.status == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "open-source status is disabled"})
		return
	}
	st, err := h.status.Status(c.Request.Context(), c.Query("siteCommit"))
	if err != nil {
		h.log.Warn("serve: open-source status failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch open-source status"})
		return
	}
	c.Header("Cache-Control", statusCacheControl)
	c.JSON(http.StatusOK, st)
}

func (h *Handler) events(c *gin.Context) {
	ch := h.hub.Subscribe()
	defer h.hub.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	fmt.Fprint(c.Writer, "data: hello\n\n")
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", msg)
			c.Writer.Flush()
		}
	}
}

func (h *Handler) notFound(c *gin.Context) {
	page := h.composer.NotFound(c.Request.URL.Path)
	out, err := h.tpl.RenderNotFound(c.Request.Context(), page)
	if err != nil {
		h.log.Error("serve: render 404 failed", "error", err)
		c.String(http.StatusNotFound, "404 page not found")
		return
	}
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", out)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, domainerr.ErrNotFound) {
		h.log.Debug("serve: not found", "path", c.Request.URL.Path, "error", err)
		h.notFound(c)
		return
	}
	h.log.Error("serve: request failed", "path", c.Request.URL.Path, "error", err)
	c.String(http.StatusInternalServerError, "internal server error")
}

func (h *Handler) write(c *gin.Context, out []byte, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", out)
}
