// Package widget turns profile reports into displayable views.
package widget

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vincentngwk/GIT-ML-DS/internal/analysis"
)

// View is a rendered report ready to be written to a response or a file.
type View struct {
	ContentType string
	Body        []byte
}

func (v View) String() string { return string(v.Body) }

// Renderer draws a report.
type Renderer interface {
	Render(rep *analysis.Report) (View, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(rep *analysis.Report) (View, error)

func (f RendererFunc) Render(rep *analysis.Report) (View, error) { return f(rep) }

// ErrUnknownFormat is returned by Get for an unregistered name.
var ErrUnknownFormat = errors.New("unknown report format")

var (
	mu       sync.RWMutex
	registry = map[string]Renderer{}
)

// Register makes a renderer available under name, replacing any previous one.
func Register(name string, r Renderer) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = r
}

// Get returns the renderer registered as name.
func Get(name string) (Renderer, error) {
	mu.RLock()
	defer mu.RUnlock()
	if r, ok := registry[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownFormat, name, namesLocked())
}

// Names lists registered renderer names in order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// init registers built-in renderers.
func init() {
	Register("html", HTML{})
	Register("page", Page{})
	Register("markdown", Markdown{})
	Register("json", JSON{})
}
