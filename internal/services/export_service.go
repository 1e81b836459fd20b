package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"lager/internal/models"
	"lager/internal/repositories"
)

// ExportFilename is the attachment name of the inventory export.
const ExportFilename = "inventory_export.csv"

var exportHeader = []string{"EAN Code", "Name", "Description", "Quantity", "Price"}

// ExportService renders the in-stock inventory as CSV.
type ExportService struct {
	repo repositories.ArticleRepository
}

// NewExportService creates a new ExportService.
func NewExportService(repo repositories.ArticleRepository) *ExportService {
	return &ExportService{
		repo: repo,
	}
}

// WriteCSV writes a header and one row per article with quantity > 0, sorted by name.
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer) error {
	articles, err := s.repo.List(ctx, repositories.ListQuery{InStockOnly: true})
	if err != nil {
		return classify("export articles", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, a := range articles {
		if err := cw.Write(exportRow(a)); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", a.EANCode, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportRow(a models.Article) []string {
	description, price := "", ""
	if a.Description != nil {
		description = *a.Description
	}
	if a.Price != nil {
		price = a.Price.StringFixed(2)
	}
	return []string{a.EANCode, a.Name, description, strconv.Itoa(a.Quantity), price}
}
