package serve

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

var errorPage = template.Must(template.New("error").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Build failed</title>
<style>body{font-family:sans-serif;margin:2rem}pre{background:#fee;padding:1rem;white-space:pre-wrap}</style>
</head>
<body>
<h1>Build failed</h1>
<p>{{.Category}}</p>
<pre>{{.Message}}</pre>
<p>Fix the problem and save; this page reloads when the next build finishes.</p>
<script>(function(){var es=new EventSource("/livereload");es.onmessage=function(e){if(e.data==="reload"){location.reload();}};})();</script>
</body>
</html>
`))

func renderErrorPage(err error) []byte {
	data := struct{ Category, Message string }{Category: "error", Message: err.Error()}
	if ce, ok := errors.AsClassified(err); ok {
		data.Category = string(ce.Category()) + " error"
	}
	var buf bytes.Buffer
	_ = errorPage.Execute(&buf, data)
	return buf.Bytes()
}

// siteHandler serves files from the built site. Directories fall back to index.html and
// unknown paths get the site's 404 page.
type siteHandler struct {
	root   func() string
	status *buildStatus
}

func (h *siteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if _, err := h.status.get(); err != nil && acceptsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(renderErrorPage(err))
		return
	}

	root := h.root()
	if root == "" {
		http.Error(w, "site not built yet", http.StatusServiceUnavailable)
		return
	}
	clean := path.Clean("/" + r.URL.Path)
	file := filepath.Join(root, filepath.FromSlash(clean))
	if st, err := os.Stat(file); err == nil && st.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
			return
		}
		file = filepath.Join(file, "index.html")
	}
	if st, err := os.Stat(file); err != nil || st.IsDir() {
		h.notFound(w, root)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, file)
}

func (h *siteHandler) notFound(w http.ResponseWriter, root string) {
	data, err := os.ReadFile(filepath.Join(root, "404.html")) // #nosec G304 -- inside the site directory
	if err != nil {
		http.NotFound(w, nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(data)
}

func acceptsHTML(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		return true
	}
	ext := path.Ext(r.URL.Path)
	return ext == "" || ext == ".html"
}
