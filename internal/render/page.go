package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/mr1hm/go-quake-map/internal/depth"
)

//go:embed templates/map.html.tmpl
var templatesFS embed.FS

var pageTemplate = template.Must(
	template.New("map.html.tmpl").Funcs(template.FuncMap{
		"safeCSS": func(c depth.ColorCode) template.CSS { return template.CSS(c) },
	}).ParseFS(templatesFS, "templates/map.html.tmpl"),
)

type pageData struct {
	Title       string
	View        template.JS
	LegendTitle string
	LegendItems []LegendItem
}

// Render writes the map page to w.
func (m *Map) Render(w io.Writer, title string) error {
	v := m.view()

	viewJSON, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error marshaling map view: %w", err)
	}

	data := pageData{
		Title: title,
		View:  template.JS(viewJSON),
	}
	if v.Legend != nil {
		data.LegendTitle = v.Legend.Title
		data.LegendItems = v.Legend.Items
	}

	return pageTemplate.Execute(w, data)
}

// WritePage renders to a temp file next to path and renames it into place so
// a browser never reads a partial page.
func (m *Map) WritePage(path, title string) error {
	var buf bytes.Buffer
	if err := m.Render(&buf, title); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating output dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("error writing tmp page: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("error renaming page: %w", err)
	}
	return nil
}
