package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	stations "chargewatch/internal/stations/domain"
)

// BuildStationsXLSX renders the station inventory as a spreadsheet with one
// row per record.
func BuildStationsXLSX(records []stations.Record, providerNames map[int]string) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "stations"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Provider", "Station ID", "Friendly Name", "Address", "Location", "Created"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(sheet, cell, header)
	}
	for i, record := range records {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), record.ID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), providerLabel(providerNames, record.ProviderID))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), record.StationID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), record.FriendlyName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), record.Address)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), record.Location)
		_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row), record.CreatedAt.Format(time.RFC3339))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildStationsPDF renders the station inventory as a minimal PDF table.
func BuildStationsPDF(records []stations.Record, providerNames map[int]string) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Charging Stations")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Records: %d", len(records)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(35, 6, "Provider", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Station ID", "1", 0, "C", false, 0, "")
	pdf.CellFormat(80, 6, "Friendly Name", "1", 0, "C", false, 0, "")
	pdf.CellFormat(80, 6, "Address", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Location", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, record := range records {
		pdf.CellFormat(35, 6, providerLabel(providerNames, record.ProviderID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%d", record.StationID), "1", 0, "R", false, 0, "")
		pdf.CellFormat(80, 6, record.FriendlyName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(80, 6, record.Address, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, record.Location, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func providerLabel(names map[int]string, id int) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("provider-%d", id)
}
