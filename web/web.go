// Package web embeds the page layouts and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/url"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the page layouts. Each file is addressed by its base name.
func Templates() (*template.Template, error) {
	return template.New("pages").Funcs(template.FuncMap{
		"withQuery": withQuery,
	}).ParseFS(templateFS, "templates/*.html")
}

// Static is the static asset tree, rooted at its top-level files.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// withQuery returns path with key set to value in the given query.
func withQuery(path string, q url.Values, key, value string) string {
	next := url.Values{}
	for k, v := range q {
		next[k] = append([]string(nil), v...)
	}
	if value == "" {
		next.Del(key)
	} else {
		next.Set(key, value)
	}
	if enc := next.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}
