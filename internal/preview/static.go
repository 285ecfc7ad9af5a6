package preview

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

const notFoundPage = "404.html"

// staticHandler serves files under root the way a static host would:
// "/blog/post" resolves to "blog/post/index.html" or "blog/post.html", and
// misses are answered with the site's 404 page.
func staticHandler(root string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		clean := path.Clean("/" + r.URL.Path)
		for _, candidate := range []string{clean, path.Join(clean, "index.html"), clean + ".html"} {
			if serveFile(w, r, root, candidate) {
				return
			}
		}
		notFound(w, r, root)
	}
}

func serveFile(w http.ResponseWriter, r *http.Request, root, rel string) bool {
	full := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return false
	}
	f, err := os.Open(full)
	if err != nil {
		return false
	}
	defer f.Close()
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

func notFound(w http.ResponseWriter, r *http.Request, root string) {
	data, err := os.ReadFile(filepath.Join(root, notFoundPage))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(data)
}
