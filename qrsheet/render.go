package qrsheet

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/go-pdf/fpdf"
)

// Card is one table on the sheet.
type Card struct {
	TableNumber string
	SectionName string
	MenuURL     string
	GeneratedAt *time.Time
}

type Options struct {
	Title  string
	Author string
	Now    time.Time
}

type rgb struct{ r, g, b int }

var (
	navy      = rgb{0x1a, 0x1a, 0x2e}
	gold      = rgb{0xc9, 0xa8, 0x4c}
	green     = rgb{0x16, 0xa3, 0x4a}
	grey      = rgb{0x88, 0x88, 0x88}
	darkGrey  = rgb{0x66, 0x66, 0x66}
	lightGrey = rgb{0xaa, 0xaa, 0xaa}
)

// newBadgeWindow marks cards whose QR code was generated recently.
const newBadgeWindow = 24 * time.Hour

// EncodeQR returns the QR matrix for content.
func EncodeQR(content string) (barcode.Barcode, error) {
	return qr.Encode(content, qr.M, qr.Auto)
}

// WritePNG writes content as a size×size PNG QR code.
func WritePNG(w io.Writer, content string, size int) error {
	code, err := EncodeQR(content)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return fmt.Errorf("scale qr: %w", err)
	}
	return png.Encode(w, scaled)
}

// Render writes the card sheet as PDF.
func Render(w io.Writer, cards []Card, opts Options) error {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Title == "" {
		opts.Title = "Table QR Codes"
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(opts.Title, true)
	pdf.SetAuthor(opts.Author, true)
	pdf.SetCreationDate(opts.Now)
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, 0)

	totalPages := PageCount(len(cards))
	if totalPages == 0 {
		pdf.AddPage()
		drawHeader(pdf, opts)
		setText(pdf, "", 11, grey)
		pdf.SetXY(Margin, Margin+HeaderHeight)
		pdf.CellFormat(PageWidth-Margin*2, 20, "No tables on the floor plan.", "", 0, "C", false, 0, "")
	}

	for i, card := range cards {
		page, cell := CellRect(i)
		if i%CellsPerPage == 0 {
			pdf.AddPage()
			drawHeader(pdf, opts)
			drawFooter(pdf, page+1, totalPages)
		}
		if err := drawCard(pdf, card, cell, opts.Now); err != nil {
			return fmt.Errorf("table %s: %w", card.TableNumber, err)
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func setText(pdf *fpdf.Fpdf, style string, size float64, c rgb) {
	pdf.SetFont("Helvetica", style, size)
	pdf.SetTextColor(c.r, c.g, c.b)
}

func drawHeader(pdf *fpdf.Fpdf, opts Options) {
	usable := PageWidth - Margin*2

	setText(pdf, "B", 16, navy)
	pdf.SetXY(Margin, Margin+5)
	pdf.CellFormat(usable, 18, opts.Title, "", 0, "L", false, 0, "")

	setText(pdf, "", 9, darkGrey)
	pdf.SetXY(Margin, Margin+25)
	pdf.CellFormat(usable, 12, "Generated: "+opts.Now.Format("2 January 2006"), "", 0, "L", false, 0, "")

	pdf.SetDrawColor(gold.r, gold.g, gold.b)
	pdf.SetLineWidth(2)
	pdf.Line(Margin, Margin+50, PageWidth-Margin, Margin+50)
}

func drawFooter(pdf *fpdf.Fpdf, page, total int) {
	footerY := PageHeight - Margin - FooterHeight + 10

	pdf.SetDrawColor(0xee, 0xee, 0xee)
	pdf.SetLineWidth(0.5)
	pdf.Line(Margin, footerY, PageWidth-Margin, footerY)

	setText(pdf, "", 8, rgb{0x99, 0x99, 0x99})
	pdf.SetXY(Margin, footerY+5)
	pdf.CellFormat(PageWidth-Margin*2, 10, fmt.Sprintf("Page %d of %d", page, total), "", 0, "C", false, 0, "")
}

func drawCard(pdf *fpdf.Fpdf, card Card, cell Rect, now time.Time) error {
	inner := cell.W - 10

	section := card.SectionName
	if section == "" {
		section = "Unassigned"
	}
	setText(pdf, "", 9, grey)
	pdf.SetXY(cell.X+5, cell.Y+5)
	pdf.CellFormat(inner, 11, section, "", 0, "C", false, 0, "")

	setText(pdf, "B", 20, navy)
	pdf.SetXY(cell.X+5, cell.Y+18)
	pdf.CellFormat(inner, 22, card.TableNumber, "", 0, "C", false, 0, "")

	qrSize := QRSize()
	qrX := cell.X + (cell.W-qrSize)/2
	qrY := cell.Y + 45
	code, err := EncodeQR(card.MenuURL)
	if err != nil {
		return err
	}
	drawModules(pdf, code, qrX, qrY, qrSize)

	badgeY := qrY + qrSize + 5
	if card.GeneratedAt != nil {
		pdf.SetXY(cell.X+5, badgeY)
		if now.Sub(*card.GeneratedAt) < newBadgeWindow {
			setText(pdf, "B", 7, green)
			pdf.CellFormat(inner, 8, "NEW", "", 0, "C", false, 0, "")
		} else {
			setText(pdf, "", 7, grey)
			pdf.CellFormat(inner, 8, card.GeneratedAt.Format("02/01/2006"), "", 0, "C", false, 0, "")
		}
	}

	setText(pdf, "", 6, lightGrey)
	pdf.SetXY(cell.X+5, badgeY+10)
	pdf.CellFormat(inner, 8, card.MenuURL, "", 0, "C", false, 0, "")
	return nil
}

// drawModules paints the dark QR modules as filled squares.
func drawModules(pdf *fpdf.Fpdf, code image.Image, x, y, size float64) {
	bounds := code.Bounds()
	modules := bounds.Dx()
	if modules == 0 {
		return
	}
	step := size / float64(modules)

	pdf.SetFillColor(navy.r, navy.g, navy.b)
	for my := bounds.Min.Y; my < bounds.Max.Y; my++ {
		for mx := bounds.Min.X; mx < bounds.Max.X; mx++ {
			r, _, _, _ := code.At(mx, my).RGBA()
			if r != 0 {
				continue
			}
			pdf.Rect(x+float64(mx-bounds.Min.X)*step, y+float64(my-bounds.Min.Y)*step, step, step, "F")
		}
	}
}
