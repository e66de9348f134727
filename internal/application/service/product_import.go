package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/sangkips/optica-api/internal/domain/entity"
	"github.com/sangkips/optica-api/pkg/apperror"
)

const headerScanRows = 10

var (
	nameHeaders  = []string{"name", "nom", "product", "produit"}
	priceHeaders = []string{"price", "prix"}
)

// ImportResult summarizes a bulk product import
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError describes why a single row was skipped
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (r *ImportResult) fail(row int, field, message string) {
	r.Failed++
	r.Errors = append(r.Errors, ImportRowError{Row: row, Field: field, Message: message})
}

type sheetLayout struct {
	headerRow int
	nameCol   int
	priceCol  int
}

// detectLayout looks for a header row in the first rows of the sheet.
// Without one the first column is the name and the second the price.
func detectLayout(rows [][]string) sheetLayout {
	limit := headerScanRows
	if len(rows) < limit {
		limit = len(rows)
	}

	for i := 0; i < limit; i++ {
		nameCol, priceCol := -1, -1
		for j, cell := range rows[i] {
			cell = strings.ToLower(strings.TrimSpace(cell))
			if nameCol < 0 && matchesAny(cell, nameHeaders) {
				nameCol = j
				continue
			}
			if priceCol < 0 && matchesAny(cell, priceHeaders) {
				priceCol = j
			}
		}
		if nameCol >= 0 && priceCol >= 0 {
			return sheetLayout{headerRow: i, nameCol: nameCol, priceCol: priceCol}
		}
	}

	return sheetLayout{headerRow: -1, nameCol: 0, priceCol: 1}
}

func matchesAny(cell string, keywords []string) bool {
	for _, k := range keywords {
		if cell == k || strings.HasPrefix(cell, k+" ") || strings.HasPrefix(cell, k+"(") {
			return true
		}
	}
	return false
}

func cellAt(row []string, col int) string {
	if col < len(row) {
		return strings.TrimSpace(row[col])
	}
	return ""
}

// parsePrice accepts "120", "120.50" and "120,50"
func parsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(raw, " ", "")
	if strings.Count(raw, ",") == 1 && !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	return decimal.NewFromString(raw)
}

// ImportProducts reads the first sheet of an .xlsx workbook and creates one
// product per data row. Failed rows are reported without aborting the batch.
func (s *ProductService) ImportProducts(ctx context.Context, r io.Reader) (*ImportResult, error) {
	ownerID, err := ownerFrom(ctx)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		log.Debug().Err(err).Msg("Rejected product import file")
		return nil, apperror.NewBadRequestError("The file is not a valid Excel workbook")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, apperror.NewBadRequestError("The workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	layout := detectLayout(rows)
	result := &ImportResult{}

	position, err := s.productRepo.MaxPosition(ctx)
	if err != nil {
		return nil, err
	}

	for i := layout.headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		name := cellAt(row, layout.nameCol)
		rawPrice := cellAt(row, layout.priceCol)
		if name == "" && rawPrice == "" {
			continue
		}

		result.TotalRows++
		rowNum := i + 1

		if name == "" {
			result.fail(rowNum, "name", "Name is required")
			continue
		}
		price, err := parsePrice(rawPrice)
		if err != nil {
			result.fail(rowNum, "price", fmt.Sprintf("Invalid price %q", rawPrice))
			continue
		}
		if price.IsNegative() {
			result.fail(rowNum, "price", "Price must not be negative")
			continue
		}

		product := &entity.Product{
			UserID:   ownerID,
			Name:     name,
			Price:    price,
			Position: position + 1,
		}
		if err := s.productRepo.Create(ctx, product); err != nil {
			log.Warn().Err(err).Int("row", rowNum).Str("name", name).Msg("Product import row failed")
			result.fail(rowNum, "", "Failed to save product")
			continue
		}

		position++
		result.Successful++
	}

	if result.Successful > 0 {
		invalidateDashboard(ctx, s.cache, ownerID)
	}

	log.Info().
		Str("owner_id", ownerID.String()).
		Int("total", result.TotalRows).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("Product import finished")

	return result, nil
}
