// Package holdings parses manually-maintained holdings records from the
// markdown tables in Holdings.md.
package holdings

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/bobmcallan/holdsnap/internal/common"
	"github.com/bobmcallan/holdsnap/internal/interfaces"
	"github.com/bobmcallan/holdsnap/internal/models"
)

// Section headings recognized in the holdings file. The file is maintained
// by hand in Chinese; each section is a markdown table with columns
// Code | Name | Market | Cost | Qty | MarketValue | BuyDate.
var holdingsSections = map[string]bool{
	"A股持仓": true, // mainland equities and ETFs
	"港股持仓":  true, // Hong Kong equities
	"美股持仓":  true, // US equities, ETFs and RSUs
}

// Column offsets within a holdings table row.
const (
	colCode = 0
	colName = 1
	colCost = 3
	colQty  = 4
	colDate = 6
)

// Parser reads HoldingRecord values from a markdown holdings file.
type Parser struct {
	path   string
	logger *common.Logger
}

// NewParser creates a parser for the holdings file at path.
func NewParser(path string, logger *common.Logger) *Parser {
	return &Parser{path: path, logger: logger}
}

// Load reads and parses the holdings file, preserving section and row order.
func (p *Parser) Load(_ context.Context) ([]models.HoldingRecord, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings file %s: %w", p.path, err)
	}
	return p.Parse(data), nil
}

// Parse extracts holdings records from markdown content. Rows with an
// unparsable cost are skipped with a warning; `-` placeholders for cost,
// quantity and acquisition date are tolerated (zero cost, zero quantity,
// unknown date).
func (p *Parser) Parse(source []byte) []models.HoldingRecord {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(source))

	var records []models.HoldingRecord
	inSection := false

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			inSection = holdingsSections[strings.TrimSpace(nodeText(n, source))]
		case *east.Table:
			if !inSection {
				continue
			}
			records = append(records, p.parseTable(n, source)...)
		}
	}

	return records
}

// parseTable converts one holdings table into records, row by row.
func (p *Parser) parseTable(table *east.Table, source []byte) []models.HoldingRecord {
	var records []models.HoldingRecord

	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		if _, isHeader := row.(*east.TableHeader); isHeader {
			continue
		}

		cols := rowCells(row, source)
		if len(cols) <= colQty {
			continue
		}

		code := cols[colCode]
		if code == "" {
			continue
		}

		cost, err := parseCost(cols[colCost])
		if err != nil {
			p.logger.Warn().
				Str("code", code).
				Str("cost", cols[colCost]).
				Msg("Skipping holdings row with unparsable cost")
			continue
		}

		record := models.HoldingRecord{
			RawCode:   code,
			Name:      cols[colName],
			CostBasis: cost,
			Quantity:  parseQuantity(cols[colQty]),
		}

		if len(cols) > colDate {
			record.AcquisitionDate = parseDate(cols[colDate])
		}

		records = append(records, record)
	}

	return records
}

// rowCells returns the trimmed text of each cell in a table row.
func rowCells(row ast.Node, source []byte) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cells = append(cells, strings.TrimSpace(nodeText(cell, source)))
	}
	return cells
}

// nodeText collects the plain text under a node.
func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := child.(*ast.Text); ok {
				sb.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

// parseCost parses a cost cell. `-` and blanks mean a cost-free position
// (e.g. freshly vested restricted units) and map to zero; the row is kept.
func parseCost(s string) (float64, error) {
	if s == "" || s == "-" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// parseQuantity parses a quantity cell, treating `-` and blanks as zero.
func parseQuantity(s string) float64 {
	if s == "" || s == "-" {
		return 0
	}
	q, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return q
}

// parseDate parses an acquisition date cell. Unknown or unparsable dates
// return the zero time; the enricher reports holding duration as absent
// rather than fabricating one from a placeholder date.
func parseDate(s string) time.Time {
	if s == "" || s == "-" {
		return time.Time{}
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return d
}

// Ensure Parser implements HoldingsSource
var _ interfaces.HoldingsSource = (*Parser)(nil)
