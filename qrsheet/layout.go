// Package qrsheet lays out printable A4 sheets of table QR cards.
package qrsheet

import (
	"math"
	"net/url"
	"strings"
)

// A4 in points.
const (
	PageWidth    = 595.28
	PageHeight   = 841.89
	Margin       = 40.0
	Cols         = 2
	Rows         = 3
	HeaderHeight = 80.0
	FooterHeight = 30.0

	CellsPerPage = Cols * Rows
)

type Rect struct {
	X, Y, W, H float64
}

func cellWidth() float64 {
	return (PageWidth - Margin*2) / Cols
}

func cellHeight() float64 {
	return (PageHeight - Margin*2 - HeaderHeight - FooterHeight) / Rows
}

// QRSize is the side of the QR code drawn in each card.
func QRSize() float64 {
	return math.Min(cellWidth()-30, cellHeight()-60)
}

// PageCount returns how many pages n cards need.
func PageCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + CellsPerPage - 1) / CellsPerPage
}

// CellRect returns the page and the rectangle of card i.
func CellRect(i int) (int, Rect) {
	page := i / CellsPerPage
	idx := i % CellsPerPage
	col := idx % Cols
	row := idx / Cols

	return page, Rect{
		X: Margin + float64(col)*cellWidth(),
		Y: Margin + HeaderHeight + float64(row)*cellHeight(),
		W: cellWidth(),
		H: cellHeight(),
	}
}

// MenuURL is the digital menu link encoded in a table's QR code.
func MenuURL(baseURL, tableNumber string) string {
	return strings.TrimRight(baseURL, "/") + "/menu/digital?table=" + url.QueryEscape(tableNumber)
}
