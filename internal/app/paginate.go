package app

import (
	"fmt"

	domainerr "techblog/internal/domain/errors"
	"techblog/internal/domain/site"
	"techblog/internal/render"
)

// Paginate splits total items into pages of perPage. An empty feed still has
// one page; any page outside 1..Total is not found.
func Paginate(total, perPage, page int) (render.Pagination, error) {
	if perPage <= 0 {
		return render.Pagination{}, fmt.Errorf("posts per page %d: %w", perPage, domainerr.ErrInvalid)
	}
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	if page < 1 || page > pages {
		return render.Pagination{}, fmt.Errorf("page %d of %d: %w", page, pages, domainerr.ErrNotFound)
	}

	p := render.Pagination{
		Current:  page,
		Total:    pages,
		PageSize: perPage,
		HasPrev:  page > 1,
		HasNext:  page < pages,
	}
	if p.HasPrev {
		p.PrevURL = site.HomePageURL(page - 1)
	}
	if p.HasNext {
		p.NextURL = site.HomePageURL(page + 1)
	}
	return p, nil
}

func pageWindow[T any](items []T, p render.Pagination) []T {
	start := (p.Current - 1) * p.PageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
