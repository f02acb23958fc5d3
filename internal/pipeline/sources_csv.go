// =============================================================================
// sources_csv.go - Spreadsheet Research Sources
// =============================================================================
//
// The two research spreadsheets are published as CSV exports. Rows are keyed
// by the header so column order never matters, and ragged rows are tolerated:
// a short row simply leaves its trailing fields missing for the normalizer.
//
// =============================================================================
package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// fetchCSV downloads a spreadsheet export and maps each data row by the
// header row. Cells past the header width are dropped.
func (p *Pipeline) fetchCSV(ctx context.Context, url string) ([]ResearchRow, error) {
	body, err := p.httpGet(ctx, url, "text/csv")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	r := csv.NewReader(body)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []ResearchRow
	for {
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV row: %w", err)
		}

		row := make(ResearchRow, len(header))
		for i, cell := range cells {
			if i >= len(header) {
				break
			}
			row[header[i]] = cell
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// collectResearchRows is the shared path of the two spreadsheet sources:
// fetch, take the first rows, optionally fill missing abstracts from the
// linked PDFs, then normalize.
func (p *Pipeline) collectResearchRows(ctx context.Context, url string, take int) ([]Record, error) {
	rows, err := p.fetchCSV(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(rows) > take {
		rows = rows[:take]
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		if p.cfg.Sources.PDFAbstracts {
			p.fillAbstractFromPDF(ctx, row)
		}
		out = append(out, NormalizeResearch(row))
	}
	return out, nil
}

func (p *Pipeline) collectResearchList(ctx context.Context) ([]Record, error) {
	return p.collectResearchRows(ctx, p.cfg.Sources.ResearchListURL, p.cfg.Sources.ResearchListTake)
}

func (p *Pipeline) collectResearchBrief(ctx context.Context) ([]Record, error) {
	return p.collectResearchRows(ctx, p.cfg.Sources.ResearchBriefURL, p.cfg.Sources.ResearchBriefTake)
}
