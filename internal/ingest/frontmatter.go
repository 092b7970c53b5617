package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

var utf8BOM = []byte("\uFEFF")

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// SplitFrontMatter separates the YAML header from the markdown body. Input
// without a header yields an empty map and the whole input as body. A header
// that fails to decode is dropped and reported through err, while meta is
// still a usable empty map.
func SplitFrontMatter(raw []byte) (meta map[string]any, body []byte, err error) {
	norm := bytes.TrimPrefix(raw, utf8BOM)
	norm = bytes.ReplaceAll(norm, []byte("\r\n"), []byte("\n"))
	norm = bytes.ReplaceAll(norm, []byte("\r"), []byte("\n"))

	meta = map[string]any{}
	rest, perr := frontmatter.Parse(bytes.NewReader(norm), &meta, yamlFormat)
	if perr != nil {
		return map[string]any{}, cutFrontMatter(norm), fmt.Errorf("front matter: %w", perr)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return meta, rest, nil
}

// cutFrontMatter strips a delimited header without decoding it.
func cutFrontMatter(norm []byte) []byte {
	const (
		sep      = "---"
		sepLine  = sep + "\n"
		closeMid = "\n" + sep + "\n"
	)
	if !bytes.HasPrefix(norm, []byte(sepLine)) {
		return norm
	}
	rest := norm[len(sepLine):]
	if parts := bytes.SplitN(rest, []byte(closeMid), 2); len(parts) == 2 {
		return parts[1]
	}
	if bytes.HasSuffix(rest, []byte("\n"+sep)) {
		return nil
	}
	return norm
}

// String reads a scalar front matter field as text.
func String(meta map[string]any, key string) string {
	switch v := meta[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.RFC3339)
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}
