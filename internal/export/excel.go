package export

import (
	"fmt"
	"io"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/xuri/excelize/v2"

	"github.com/diwanlib/circulate/internal/catalog"
)

// qrPixels is the rendered size of each QR label. 128px scans reliably
// from a laser-printed sheet at 100% zoom.
const qrPixels = 128

// WriteBooksXLSX writes a printable workbook: one row per book with its
// catalog fields and a QR code image of the book's canonical label code.
// Scanning a printed cell feeds the resolver the exact canonical form.
func WriteBooksXLSX(w io.Writer, books []catalog.Book) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Books"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	header := []any{"Title", "Author", "TTI Code", "ISBN", "Category", "Status", "QR Code"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for col, width := range map[string]float64{"A": 40, "B": 25, "C": 14, "D": 18, "E": 28, "F": 14, "G": 20} {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("size column %s: %w", col, err)
		}
	}

	for i, b := range books {
		row := i + 2
		cells := []any{b.Title, b.Author, b.TTICode, b.ISBN, b.Category, string(b.Status)}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
			return fmt.Errorf("write book %q: %w", b.Title, err)
		}

		png, err := qrcode.Encode(b.CanonicalCode(), qrcode.Medium, qrPixels)
		if err != nil {
			return fmt.Errorf("encode QR for %q: %w", b.Title, err)
		}
		if err := f.AddPictureFromBytes(sheet, fmt.Sprintf("G%d", row), &excelize.Picture{
			Extension: ".png",
			File:      png,
			Format:    &excelize.GraphicOptions{AutoFit: false},
		}); err != nil {
			return fmt.Errorf("place QR for %q: %w", b.Title, err)
		}
		// Row tall enough that the image does not overlap its neighbors.
		if err := f.SetRowHeight(sheet, row, 100); err != nil {
			return fmt.Errorf("size row %d: %w", row, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
