package pdf

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"go-vacancy-swipe/internal/models"
)

//go:embed templates/saved.html
var templatesFS embed.FS

// Renderer prints HTML to PDF. *browser.PlaywrightManager implements it.
type Renderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// Generator turns a user's saved list into a PDF document.
type Generator struct {
	tmpl     *template.Template
	renderer Renderer
}

type document struct {
	Name        string
	Vacancies   []models.SavedVacancy
	GeneratedAt time.Time
}

func NewGenerator(renderer Renderer) (*Generator, error) {
	funcMap := template.FuncMap{
		"inc":  func(i int) int { return i + 1 },
		"date": func(t time.Time) string { return t.Format("02.01.2006 15:04") },
	}
	tmpl, err := template.New("saved.html").Funcs(funcMap).ParseFS(templatesFS, "templates/saved.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Generator{tmpl: tmpl, renderer: renderer}, nil
}

// HTML renders the export page without printing it.
func (g *Generator) HTML(name string, vacancies []models.SavedVacancy) (string, error) {
	var buf bytes.Buffer
	doc := document{Name: name, Vacancies: vacancies, GeneratedAt: time.Now()}
	if err := g.tmpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (g *Generator) Generate(ctx context.Context, name string, vacancies []models.SavedVacancy) ([]byte, error) {
	html, err := g.HTML(name, vacancies)
	if err != nil {
		return nil, err
	}
	pdfBytes, err := g.renderer.RenderPDF(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return pdfBytes, nil
}

// SaveToFile writes a rendered export, creating its directory.
func SaveToFile(pdfBytes []byte, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory: %w", err)
	}

	return os.WriteFile(outputPath, pdfBytes, 0644)
}
