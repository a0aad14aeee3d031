package export

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Text page layout, in millimetres from the top-left corner.
const (
	textLeftMM = 10.0
	textTopMM  = 10.0
	// lineSpacing is the baseline distance as a multiple of the font size.
	lineSpacing = 1.15
)

// printScript runs when the document is opened and shows the print dialog.
const printScript = "this.print({bUI: true, bSilent: false, bShrinkToFit: true});"

// imagePDF embeds a bitmap as a full-page image on a single A4 page.
// With autoPrint the document opens the print dialog when viewed.
func imagePDF(bitmap []byte, autoPrint bool) ([]byte, error) {
	imageType, err := detectImageType(bitmap)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
	pdf.RegisterImageOptionsReader("snapshot", opts, bytes.NewReader(bitmap))
	pdf.ImageOptions("snapshot", 0, 0, pageWidthMM, pageHeightMM, false, opts, 0, "")

	if autoPrint {
		pdf.SetJavascript(printScript)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("generating PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// textPDF writes text on a single A4 page starting near the top-left
// margin, one baseline per line. There is no wrapping and no pagination:
// text running past the page edge is clipped by the viewer.
func textPDF(text string, fontSize float64) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", fontSize)

	lineHeight := pdf.PointConvert(fontSize) * lineSpacing
	y := textTopMM
	for _, line := range strings.Split(text, "\n") {
		pdf.Text(textLeftMM, y, toWinAnsi(line))
		y += lineHeight
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("generating PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// toWinAnsi converts text to the code page of the PDF core fonts.
// Characters outside it are replaced rather than dropped.
func toWinAnsi(s string) string {
	out, err := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()).String(s)
	if err != nil {
		return s
	}
	return out
}

// detectImageType tells PNG from JPEG for the PDF image registry.
func detectImageType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty bitmap")
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding bitmap: %w", err)
	}
	return strings.ToUpper(format), nil
}
