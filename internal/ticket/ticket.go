package ticket

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Domenick1991/surgefare/internal/domain"
	"github.com/phpdave11/gofpdf"
)

// Renderer produces a ticket for a confirmed booking and returns a reference
// to where it was stored.
type Renderer interface {
	Render(ctx context.Context, fields domain.TicketFields) (string, error)
}

// compress is switched off in tests to inspect the page content.
var compress = true

func BuildPDF(f domain.TicketFields) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	// Core fonts are cp1252; passenger names arrive as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("E-Ticket "+f.PNR, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "FLIGHT E-TICKET")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"PNR          : " + f.PNR,
		"Passenger    : " + f.PassengerName,
		"Airline      : " + f.Airline,
		"Flight       : " + f.FlightID,
		fmt.Sprintf("Route        : %s -> %s", f.Route.From, f.Route.To),
		fmt.Sprintf("Amount paid  : %d", f.FinalPrice),
		"Booked at    : " + f.BookedAt.UTC().Format("2006-01-02 15:04 MST"),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, tr(s))
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please present this ticket and a valid photo ID at check-in.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket %s: %w", f.PNR, err)
	}
	return buf.Bytes(), nil
}

// FileStore writes rendered tickets as ticket_<PNR>.pdf under Dir.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Render(_ context.Context, fields domain.TicketFields) (string, error) {
	data, err := BuildPDF(fields)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create ticket dir: %w", err)
	}
	path := filepath.Join(s.dir, FileName(fields.PNR))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write ticket: %w", err)
	}
	return path, nil
}

func FileName(pnr string) string {
	return fmt.Sprintf("ticket_%s.pdf", pnr)
}

var _ Renderer = (*FileStore)(nil)
