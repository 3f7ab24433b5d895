// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package templates

import (
	"embed"
	"html/template"
)

type TemplateHandler struct {
	TmplHome     *template.Template
	TmplStory    *template.Template
	TmplRegistry *template.Template
	TmplGallery  *template.Template
}

//go:embed templates/*.html
var templates embed.FS

func NewTemplateHandler() *TemplateHandler {
	mainTemplate := []string{"templates/main.html", "templates/main.style.html", "templates/header.html", "templates/nav.html", "templates/footer.html"}

	return &TemplateHandler{
		TmplHome:     template.Must(template.ParseFS(templates, append(mainTemplate, "templates/home.html")...)),
		TmplStory:    template.Must(template.ParseFS(templates, append(mainTemplate, "templates/story.html")...)),
		TmplRegistry: template.Must(template.ParseFS(templates, append(mainTemplate, "templates/registry.html")...)),
		TmplGallery:  template.Must(template.ParseFS(templates, append(mainTemplate, "templates/gallery.html")...)),
	}
}
