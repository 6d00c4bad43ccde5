package handler

import (
	"embed"
	"html/template"
	"net/url"

	"notesweb/dto"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type cardData struct {
	Card     dto.NoteCard
	ReturnTo string
}

var templateFuncs = template.FuncMap{
	"noteURL": func(id, suffix string) string {
		return "/notes/" + url.PathEscape(id) + suffix
	},
	"cardData": func(card dto.NoteCard, returnTo string) cardData {
		return cardData{Card: card, ReturnTo: returnTo}
	},
}

// LoadTemplates parses the embedded pages. Pass the result to
// gin.Engine.SetHTMLTemplate.
func LoadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl"))
}
