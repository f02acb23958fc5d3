// =============================================================================
// pdf.go - PDF Abstract Fallback
// =============================================================================
//
// A spreadsheet row sometimes links a paper PDF but leaves the Abstract cell
// empty. When the -pdfAbstracts flag is set, the pipeline extracts the PDF
// text and uses its opening as the abstract; the normalizer's truncation still
// applies afterwards.
//
// =============================================================================
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfAbstractMax caps how much extracted PDF text is kept as an abstract.
const pdfAbstractMax = 1000

// fillAbstractFromPDF fills a missing Abstract cell from the linked PDF's
// text. Extraction failure is logged and the row keeps its missing abstract,
// so the normalizer default takes over.
func (p *Pipeline) fillAbstractFromPDF(ctx context.Context, row ResearchRow) {
	if !isMissing(row["Abstract"]) || isMissing(row["PDF Link"]) {
		return
	}

	link := strings.TrimSpace(row["PDF Link"])
	text, err := p.extractTextFromPDF(ctx, link)
	if err != nil {
		p.log.Warnf("pdf abstract %s: %v", link, err)
		return
	}
	if text == "" {
		return
	}
	row["Abstract"] = truncateString(text, pdfAbstractMax)
}

// extractTextFromPDF downloads a PDF and extracts its plain text, whitespace
// normalized. Pages that fail to render are skipped rather than failing the
// whole document.
func (p *Pipeline) extractTextFromPDF(ctx context.Context, pdfURL string) (string, error) {
	body, err := p.httpGet(ctx, pdfURL, "application/pdf")
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("reading PDF: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parsing PDF: %w", err)
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}

	return normalizeWhitespace(text.String()), nil
}
