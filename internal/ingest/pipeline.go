package ingest

import (
	"os"
	"runtime"
	"sort"
	"sync"
)

type Warning struct {
	Path string
	Msg  string
}

// Source is a content file split into metadata and raw body.
type Source struct {
	Slug string
	Path string
	Meta map[string]any
	Body []byte
}

type result struct {
	Source Source
	Warns  []Warning
	Skip   bool
}

// Ingest reads and splits every markdown file in dir using a worker pool.
// Unreadable files are skipped with a warning; the output is ordered by slug
// so callers see the same sequence on every run.
func Ingest(dir string) ([]Source, []Warning, error) {
	files, err := DiscoverSource(dir)
	if err != nil {
		return nil, nil, err
	}

	workers := runtime.GOMAXPROCS(0)
	jobs := make(chan SourceFile)
	results := make(chan result)

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sf := range jobs {
				src, warns, err := Load(sf)
				if err != nil {
					warns = append(warns, Warning{Path: sf.Path, Msg: "read failed: " + err.Error()})
					results <- result{Warns: warns, Skip: true}
					continue
				}
				results <- result{Source: src, Warns: warns}
			}
		}()
	}

	go func() {
		for _, f := range files {
			jobs <- f
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var out []Source
	var warns []Warning
	for r := range results {
		if len(r.Warns) > 0 {
			warns = append(warns, r.Warns...)
		}
		if r.Skip {
			continue
		}
		out = append(out, r.Source)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	sort.SliceStable(warns, func(i, j int) bool { return warns[i].Path < warns[j].Path })
	return out, warns, nil
}

// Load reads a single source file. A malformed header is reported as a
// warning, never as an error.
func Load(sf SourceFile) (Source, []Warning, error) {
	raw, err := os.ReadFile(sf.Path)
	if err != nil {
		return Source{}, nil, err
	}

	meta, body, fmErr := SplitFrontMatter(raw)
	var warns []Warning
	if fmErr != nil {
		warns = append(warns, Warning{
			Path: sf.Path,
			Msg:  "failed to parse front matter: " + fmErr.Error(),
		})
	}
	return Source{
		Slug: sf.Slug,
		Path: sf.Path,
		Meta: meta,
		Body: body,
	}, warns, nil
}
