package publish

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// Handler serves the page published in d.
//
// Only the page under the current token is served: there is no directory listing and
// any other path is not found. Responses ask robots not to index them.
func (d *Dir) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Robots-Tag", "noindex, nofollow")
			next.ServeHTTP(w, r)
		})
	})
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	router.Get("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("User-agent: *\nDisallow: /\n"))
	})
	router.Get("/{token}/", d.servePage)
	router.Get("/{token}/"+pageFile, d.servePage)
	router.NotFound(http.NotFound)
	return router
}

func (d *Dir) servePage(w http.ResponseWriter, r *http.Request) {
	token, err := d.Token()
	if err != nil {
		log.Printf("cannot read publication token: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if chi.URLParam(r, "token") != token {
		http.NotFound(w, r)
		return
	}
	page, err := os.ReadFile(filepath.Join(d.Root, token, pageFile))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(page)
}
