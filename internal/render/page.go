package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"gemini-chat/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTitle = "Chatbot with Gemini AI"

// Bubble is one message prepared for display.
type Bubble struct {
	Role  models.Role
	Label string
	Class string
	HTML  template.HTML
}

type PageData struct {
	Title   string
	Bubbles []Bubble
	Pending string
}

type Page struct {
	tmpl *template.Template
}

func NewPage() (*Page, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/chat.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse chat template: %w", err)
	}
	return &Page{tmpl: tmpl}, nil
}

// Bubbles maps messages to display bubbles in the same order.
func Bubbles(messages []models.Message) []Bubble {
	out := make([]Bubble, len(messages))
	for i, m := range messages {
		b := Bubble{Role: m.Role, HTML: Markdown(m.Content)}
		switch m.Role {
		case models.RoleUser:
			b.Label, b.Class = "You", "user-message"
		default:
			b.Label, b.Class = "Bot", "bot-message"
		}
		out[i] = b
	}
	return out
}

func (p *Page) Execute(w io.Writer, messages []models.Message, pending string) error {
	return p.tmpl.ExecuteTemplate(w, "chat.html", PageData{
		Title:   pageTitle,
		Bubbles: Bubbles(messages),
		Pending: pending,
	})
}
