package infra

// pdf.go: group task report using go-pdf/fpdf.
// A4 page with the group header, a status summary and one row per task.

import (
	"bytes"
	"fmt"
	"time"

	"taskmanager/internal/model"

	"github.com/go-pdf/fpdf"
)

// GroupReport is the data rendered by GenerateGroupReportPDF.
type GroupReport struct {
	Group       *model.Group
	Tasks       []model.GroupTask
	Pending     int
	InProgress  int
	Completed   int
	GeneratedAt time.Time
}

// GenerateGroupReportPDF renders the report and returns the PDF bytes.
func GenerateGroupReportPDF(r GroupReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr("Reporte de grupo: "+r.Group.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Estado: "+r.Group.Status), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Miembros: %d", len(r.Group.Members)), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Generado: "+r.GeneratedAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Summary ──────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	summary := fmt.Sprintf("Total: %d   Pendientes: %d   En progreso: %d   Completadas: %d",
		len(r.Tasks), r.Pending, r.InProgress, r.Completed)
	pdf.CellFormat(contentW, 6, summary, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// ── Task table ───────────────────────────────────────────────────────────
	colTitle := contentW * 0.45
	colStatus := contentW * 0.20
	colDue := contentW * 0.15
	colAssigned := contentW * 0.20

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colTitle, 6, tr("Título"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(colStatus, 6, "Estado", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colDue, 6, "Vence", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colAssigned, 6, "Asignados", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	if len(r.Tasks) == 0 {
		pdf.CellFormat(contentW, 6, "Sin tareas", "", 1, "L", false, 0, "")
	}
	for _, t := range r.Tasks {
		title := t.Title
		if len([]rune(title)) > 48 {
			title = string([]rune(title)[:47]) + "..."
		}
		pdf.CellFormat(colTitle, 6, tr(title), "", 0, "L", false, 0, "")
		pdf.CellFormat(colStatus, 6, tr(t.Status), "", 0, "L", false, 0, "")
		pdf.CellFormat(colDue, 6, t.DueDate.Format("02/01/2006"), "", 0, "L", false, 0, "")
		pdf.CellFormat(colAssigned, 6, fmt.Sprintf("%d", len(t.AssignedTo)), "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render group report: %w", err)
	}
	return buf.Bytes(), nil
}
