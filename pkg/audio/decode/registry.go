// ABOUTME: Registry of decode backends keyed by file extension
// ABOUTME: Opens files with the backend registered for their extension
package decode

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Opener opens a file as a native frame stream
type Opener func(path string) (FrameReader, error)

// Registry maps file extensions to backends
type Registry struct {
	mu      sync.Mutex
	openers map[string]Opener
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{openers: make(map[string]Opener)}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Register adds a backend for an extension such as ".mp3"
func (r *Registry) Register(ext string, open Opener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[normalizeExt(ext)] = open
}

// Get returns the backend for an extension
func (r *Registry) Get(ext string) (Opener, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	open, ok := r.openers[normalizeExt(ext)]
	return open, ok
}

// Supported reports whether path has a registered extension
func (r *Registry) Supported(path string) bool {
	_, ok := r.Get(filepath.Ext(path))
	return ok
}

// Extensions lists registered extensions in sorted order
func (r *Registry) Extensions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	exts := make([]string, 0, len(r.openers))
	for ext := range r.openers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Open decodes path into a Source producing PCM at sampleRate
func (r *Registry) Open(path string, sampleRate int) (Source, error) {
	ext := filepath.Ext(path)
	open, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			ErrUnsupportedFormat, ext, strings.Join(r.Extensions(), ", "))
	}

	fr, err := open(path)
	if err != nil {
		return nil, err
	}
	return newPCMStream(fr, sampleRate), nil
}

// DefaultRegistry holds every built-in backend
var DefaultRegistry = func() *Registry {
	r := NewRegistry()
	r.Register(".mp3", openMP3)
	r.Register(".wav", openWAV)
	r.Register(".aif", openAIFF)
	r.Register(".aiff", openAIFF)
	r.Register(".ogg", openOgg)
	r.Register(".flac", openFLAC)
	r.Register(".wma", openFFmpeg)
	return r
}()

// Open decodes path with the default registry
func Open(path string, sampleRate int) (Source, error) {
	return DefaultRegistry.Open(path, sampleRate)
}

// Supported reports whether the default registry handles path
func Supported(path string) bool {
	return DefaultRegistry.Supported(path)
}
