// Package preview serves the built site from dist.
//
// Requests are resolved from disk on every call: the root and any path ending
// in "/" map to index.html, then the exact file is tried, then the path with
// ".html" appended. There are no directory listings. Every file is read and
// written while holding the dist read guard, so a response never mixes the
// output of two builds.
package preview

import (
	"bytes"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/whatisjasongoldstein/beagle/internal/output"
)

// Options configures a Handler.
type Options struct {
	// Dist is the directory being served.
	Dist string
	// Prefix is the URL prefix the site is mounted under. Empty means "/".
	Prefix string
	// Guard is shared with the build engine.
	Guard *output.Guard
	// Inject, when non-empty, is inserted before </body> of every HTML response.
	Inject string
}

// Handler is the preview http.Handler.
type Handler struct {
	dist   string
	prefix string
	guard  *output.Guard
	inject []byte
}

// NewHandler returns a Handler for opts.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		dist:   opts.Dist,
		prefix: normalizePrefix(opts.Prefix),
		guard:  opts.Guard,
		inject: []byte(opts.Inject),
	}
	if h.guard == nil {
		h.guard = &output.Guard{}
	}
	if resolved, err := output.ResolveTarget(h.dist); err == nil {
		h.dist = resolved
	}
	return h
}

func normalizePrefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rel, ok := h.relative(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	served := false
	err := h.guard.Read(func() error {
		file, found := Resolve(h.dist, rel)
		if !found {
			return nil
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		h.write(w, r, file, data)
		served = true
		return nil
	})
	switch {
	case err != nil:
		http.Error(w, "failed to read file", http.StatusInternalServerError)
	case !served:
		http.NotFound(w, r)
	}
}

// relative strips the prefix. A request for the prefix without its trailing
// slash is treated as the root.
func (h *Handler) relative(urlPath string) (string, bool) {
	if urlPath == "" {
		urlPath = "/"
	}
	if urlPath+"/" == h.prefix {
		return "", true
	}
	if !strings.HasPrefix(urlPath, h.prefix) {
		return "", false
	}
	return strings.TrimPrefix(urlPath, h.prefix), true
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, file string, data []byte) {
	ext := strings.ToLower(filepath.Ext(file))
	ctype := mime.TypeByExtension(ext)
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	if len(h.inject) > 0 && (ext == ".html" || ext == ".htm") {
		data = injectBeforeBody(data, h.inject)
	}

	hdr := w.Header()
	hdr.Set("Content-Type", ctype)
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(data)
}

// injectBeforeBody inserts snippet before the last </body>, or appends it.
func injectBeforeBody(page, snippet []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if idx < 0 {
		return append(append([]byte(nil), page...), snippet...)
	}
	out := make([]byte, 0, len(page)+len(snippet))
	out = append(out, page[:idx]...)
	out = append(out, snippet...)
	return append(out, page[idx:]...)
}

// Resolve maps a request path relative to the prefix onto a regular file
// under dist. It rejects any path with a ".." element and any file that
// resolves outside dist through a symlink.
func Resolve(dist, rel string) (string, bool) {
	if strings.ContainsAny(rel, "\\\x00") {
		return "", false
	}
	for _, part := range strings.Split(rel, "/") {
		if part == ".." {
			return "", false
		}
	}

	var candidates []string
	switch {
	case rel == "":
		candidates = []string{"index.html"}
	case strings.HasSuffix(rel, "/"):
		candidates = []string{rel + "index.html"}
	default:
		candidates = []string{rel, rel + ".html"}
	}
	for _, c := range candidates {
		if file, ok := regularFile(dist, path.Clean(c)); ok {
			return file, true
		}
	}
	return "", false
}

func regularFile(dist, rel string) (string, bool) {
	file := filepath.Join(dist, filepath.FromSlash(rel))
	resolved, err := filepath.EvalSymlinks(file)
	if err != nil {
		return "", false
	}
	if resolved != dist && !strings.HasPrefix(resolved, dist+string(filepath.Separator)) {
		return "", false
	}
	fi, err := os.Stat(resolved)
	if err != nil || !fi.Mode().IsRegular() {
		return "", false
	}
	return resolved, true
}
