package infra

// pdf.go — printable documents using go-pdf/fpdf.
// Facturas are rendered on A4 with the official layout blocks: emitter header,
// comprobante letter and number, receptor data, item table, totals, CAE line
// and the fiscal QR in the footer. Remitos share the layout but carry no
// amounts and no fiscal data.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"facturador/internal/model"

	"github.com/go-pdf/fpdf"
)

// PDFGenerator renders facturas and remitos to storagePath.
type PDFGenerator struct {
	storagePath string
	razonSocial string
	domicilio   string
	cuit        int64
}

func NewPDFGenerator(storagePath, razonSocial, domicilio string, cuit int64) *PDFGenerator {
	return &PDFGenerator{
		storagePath: storagePath,
		razonSocial: razonSocial,
		domicilio:   domicilio,
		cuit:        cuit,
	}
}

// letraComprobante maps the comprobante type code to its printed letter.
func letraComprobante(cbteTipo int) string {
	switch cbteTipo {
	case 1:
		return "A"
	case 6:
		return "B"
	case 11:
		return "C"
	default:
		return "X"
	}
}

// GenerateFacturaPDF renders an authorized factura. qrPNG is the encoded
// fiscal QR image; a nil slice skips the QR block.
func (g *PDFGenerator) GenerateFacturaPDF(comp *model.Comprobante, cliente *model.Cliente, qrPNG []byte) (string, error) {
	if err := os.MkdirAll(g.storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	numero := "s-n"
	if comp.NumeroOficial != nil {
		numero = *comp.NumeroOficial
	}
	fileName := fmt.Sprintf("factura_%s.pdf", numero)
	filePath := filepath.Join(g.storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Emitter header + letter box ──────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW*0.45, 8, g.razonSocial, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(contentW*0.10, 10, letraComprobante(comp.CbteTipo), "1", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW*0.45, 8, "FACTURA "+numero, "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW*0.55, 4, g.domicilio, "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.45, 4, "Fecha: "+comp.Fecha.Format("02/01/2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW*0.55, 4, fmt.Sprintf("CUIT: %d", g.cuit), "", 1, "L", false, 0, "")
	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Receptor ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	if cliente != nil {
		pdf.CellFormat(contentW, 5, "Cliente: "+cliente.RazonSocial, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		if cliente.NroDocumento != "" {
			pdf.CellFormat(contentW, 4, cliente.TipoDocumento+": "+cliente.NroDocumento, "", 1, "L", false, 0, "")
		}
		if cliente.Domicilio != "" {
			pdf.CellFormat(contentW, 4, cliente.Domicilio, "", 1, "L", false, 0, "")
		}
	} else {
		pdf.CellFormat(contentW, 5, "Cliente: Consumidor Final", "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Item table ───────────────────────────────────────────────────────────
	col1 := contentW * 0.50 // descripcion
	col2 := contentW * 0.14 // cantidad
	col3 := contentW * 0.18 // precio unitario
	col4 := contentW * 0.18 // subtotal

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 6, "Descripción", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Cant.", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "P. Unitario", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, item := range comp.Items {
		desc := item.Descripcion
		if len(desc) > 50 {
			desc = desc[:49] + "…"
		}
		pdf.CellFormat(col1, 5, desc, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, item.Cantidad.StringFixed(2), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.PrecioUnitario.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, "$"+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	if !comp.ImporteIVA.IsZero() {
		pdf.CellFormat(col1+col2+col3, 5, "Neto gravado:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, "$"+comp.ImporteNeto.StringFixed(2), "", 1, "R", false, 0, "")
		pdf.CellFormat(col1+col2+col3, 5, "IVA 21%:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, "$"+comp.ImporteIVA.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1+col2+col3, 7, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "$"+comp.ImporteTotal.StringFixed(2), "", 1, "R", false, 0, "")

	// ── CAE + QR footer ──────────────────────────────────────────────────────
	pdf.Ln(6)
	if comp.CAE != nil {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW, 4, "CAE: "+*comp.CAE, "", 1, "L", false, 0, "")
		if comp.CAEVencimiento != nil {
			pdf.SetFont("Helvetica", "", 8)
			pdf.CellFormat(contentW, 4, "Vto. CAE: "+comp.CAEVencimiento.Format("02/01/2006"), "", 1, "L", false, 0, "")
		}
	}
	if len(qrPNG) > 0 {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr_fiscal", opts, bytes.NewReader(qrPNG))
		pdf.ImageOptions("qr_fiscal", 15, pdf.GetY()+2, 30, 30, false, opts, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}

// GenerateRemitoPDF renders a remito. No amounts are printed.
func (g *PDFGenerator) GenerateRemitoPDF(rem *model.Remito, cliente *model.Cliente) (string, error) {
	if err := os.MkdirAll(g.storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("remito_%08d.pdf", rem.Numero)
	filePath := filepath.Join(g.storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW*0.5, 8, g.razonSocial, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW*0.5, 8, fmt.Sprintf("REMITO N° %08d", rem.Numero), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW*0.5, 4, g.domicilio, "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.5, 4, "Fecha: "+rem.Fecha.Format("02/01/2006"), "", 1, "R", false, 0, "")
	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 9)
	if cliente != nil {
		pdf.CellFormat(contentW, 5, "Cliente: "+cliente.RazonSocial, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		if cliente.Domicilio != "" {
			pdf.CellFormat(contentW, 4, "Entrega: "+cliente.Domicilio, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(3)

	col1 := contentW * 0.80
	col2 := contentW * 0.20

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 6, "Descripción", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Cantidad", "B", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, item := range rem.Items {
		desc := item.Descripcion
		if len(desc) > 80 {
			desc = desc[:79] + "…"
		}
		pdf.CellFormat(col1, 5, desc, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, item.Cantidad.StringFixed(2), "", 1, "C", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW*0.5, 5, "Recibí conforme: ______________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.5, 5, "Aclaración: ______________________", "", 1, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
