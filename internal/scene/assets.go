package scene

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// ErrMissingAsset is returned before any stage runs when a required asset is
// absent, unreadable or not an SVG document.
var ErrMissingAsset = errors.New("missing asset")

// Assets resolves asset paths against a configured root.
type Assets struct {
	Root string

	mu    sync.Mutex
	cache map[string][]byte
}

// NewAssets returns assets rooted at root.
func NewAssets(root string) *Assets {
	return &Assets{Root: root, cache: make(map[string][]byte)}
}

// Resolve joins the root with a slash-separated relative path.
func (a *Assets) Resolve(rel string) string {
	return filepath.Join(a.Root, filepath.FromSlash(rel))
}

// Validate checks every path exists and holds an SVG document. All problems are
// reported together.
func (a *Assets) Validate(paths []string) error {
	var problems []string
	for _, rel := range paths {
		if _, err := a.Load(rel); err != nil {
			problems = append(problems, fmt.Sprintf("%s (%v)", rel, err))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingAsset, strings.Join(problems, "; "))
	}
	return nil
}

// Load reads and caches an SVG asset.
func (a *Assets) Load(rel string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if data, ok := a.cache[rel]; ok {
		return data, nil
	}

	data, err := os.ReadFile(a.Resolve(rel))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("not found at %s", a.Resolve(rel))
		}
		return nil, err
	}
	if _, err := svgRoot(data); err != nil {
		return nil, err
	}
	if a.cache == nil {
		a.cache = make(map[string][]byte)
	}
	a.cache[rel] = data
	return data, nil
}

// AspectRatio is height over width from the asset's viewBox or size attributes.
// It is 1 when the document declares neither.
func (a *Assets) AspectRatio(rel string) (float64, error) {
	data, err := a.Load(rel)
	if err != nil {
		return 0, err
	}
	root, _ := svgRoot(data)

	var w, h float64
	for _, attr := range root.Attr {
		switch attr.Name.Local {
		case "viewBox":
			f := strings.Fields(strings.ReplaceAll(attr.Value, ",", " "))
			if len(f) == 4 {
				w, _ = strconv.ParseFloat(f[2], 64)
				h, _ = strconv.ParseFloat(f[3], 64)
			}
		case "width":
			if w == 0 {
				w = parseLength(attr.Value)
			}
		case "height":
			if h == 0 {
				h = parseLength(attr.Value)
			}
		}
	}
	if w <= 0 || h <= 0 {
		return 1, nil
	}
	return h / w, nil
}

// svgRoot returns the document element, which must be <svg>.
func svgRoot(data []byte) (xml.StartElement, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, fmt.Errorf("no root element")
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("invalid SVG: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			if se.Name.Local != "svg" {
				return se, fmt.Errorf("root element is <%s>, not <svg>", se.Name.Local)
			}
			return se, nil
		}
	}
}

func parseLength(v string) float64 {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	f, _ := strconv.ParseFloat(v, 64)
	return f
}
