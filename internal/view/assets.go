package view

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed assets
var embeddedAssets embed.FS

// Assets serves the embedded static files with long-lived cache headers and
// weak ETags computed once at startup. Mount it with the /assets prefix stripped.
func Assets() http.Handler {
	sub, _ := fs.Sub(embeddedAssets, "assets")
	etags := map[string]string{}
	_ = fs.WalkDir(sub, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(sub, p)
		if err != nil {
			return nil
		}
		sum := sha256.Sum256(data)
		etags["/"+p] = `W/"` + hex.EncodeToString(sum[:16]) + `"`
		return nil
	})
	files := http.FileServer(http.FS(sub))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Accept-Encoding")
		w.Header().Set("Cache-Control", "public, max-age=604800, stale-while-revalidate=86400")
		if et := etags["/"+strings.TrimPrefix(r.URL.Path, "/")]; et != "" {
			w.Header().Set("ETag", et)
			if r.Header.Get("If-None-Match") == et {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}
