package episode

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"strings"
)

//go:embed templates/episode.html
var defaultTemplate string

// Renderer turns a record into its transcript page.
type Renderer struct {
	tmpl        *template.Template
	titleFormat string
}

type pageArticle struct {
	URL        string
	Title      string
	StartPoint string
	Paragraphs []string
}

type pageData struct {
	Title    string
	Date     string
	FileName string
	Articles []pageArticle
}

// NewRenderer parses the template at templatePath, or the built-in page when
// templatePath is empty. titleFormat must contain "{date}".
func NewRenderer(templatePath, titleFormat string) (*Renderer, error) {
	source := defaultTemplate
	name := "episode.html"
	if strings.TrimSpace(templatePath) != "" {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("read template: %w", err)
		}
		source = string(data)
		name = templatePath
	}
	tmpl, err := template.New(name).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return &Renderer{tmpl: tmpl, titleFormat: titleFormat}, nil
}

// Title renders the episode title for date.
func Title(titleFormat, date string) string {
	return strings.ReplaceAll(titleFormat, "{date}", date)
}

// Render executes the template for record.
func (r *Renderer) Render(record Record) ([]byte, error) {
	data := pageData{
		Title:    Title(r.titleFormat, record.Date),
		Date:     record.Date,
		FileName: record.FileName,
		Articles: make([]pageArticle, 0, len(record.Articles)),
	}
	for _, article := range record.Articles {
		data.Articles = append(data.Articles, pageArticle{
			URL:        article.URL,
			Title:      article.Title,
			StartPoint: article.StartPoint,
			Paragraphs: article.Paragraphs(),
		})
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", record.FileName, err)
	}
	return buf.Bytes(), nil
}
