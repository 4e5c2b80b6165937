package document

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"travelink/internal/domain"
)

var boardingPassTemplate = template.Must(template.New("boarding_pass").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.DocumentNumber}}</title></head>
<body>
<h1>Boarding Pass {{.DocumentNumber}}</h1>
<p>Ticket: {{.Ticket.TicketNumber}}</p>
<p>Booker phone: {{.Ticket.BookerPhone}}</p>
<table>
{{range .Ticket.Passengers}}<tr><td>{{.Name}}</td><td>{{.SeatNumber}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// HTMLRenderer writes boarding passes to a local directory served as static
// files. Swappable for an object-store backed renderer via the Renderer
// interface.
type HTMLRenderer struct {
	outputDir string
	baseURL   string
}

func NewHTMLRenderer(outputDir, baseURL string) *HTMLRenderer {
	return &HTMLRenderer{outputDir: outputDir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (r *HTMLRenderer) Render(ctx context.Context, ticket *domain.Ticket, documentNumber string) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create document directory: %w", err)
	}

	filename := documentNumber + ".html"
	f, err := os.Create(filepath.Join(r.outputDir, filename))
	if err != nil {
		return "", fmt.Errorf("create document file: %w", err)
	}
	defer f.Close()

	data := struct {
		DocumentNumber string
		Ticket         *domain.Ticket
	}{DocumentNumber: documentNumber, Ticket: ticket}

	if err := boardingPassTemplate.Execute(f, data); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return r.baseURL + "/" + filename, nil
}

var _ Renderer = (*HTMLRenderer)(nil)
