package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/ayushbridge/ayushbridge/internal/mapping"
)

const (
	mappingsSheet = "Mappings"
	summarySheet  = "Summary"
)

// MappingsHeader is the header row of the Mappings sheet.
var MappingsHeader = []string{
	"NAMASTE Code",
	"NAMASTE Display",
	"Traditional System",
	"ICD-11 Code",
	"ICD-11 Display",
	"Equivalence",
	"Notes",
}

var mappingsColumnWidths = []float64{16, 30, 18, 14, 40, 14, 50}

// WriteXLSX writes a workbook with a Mappings sheet (one row per forward
// entry, load order) and a Summary sheet with the store statistics.
func WriteXLSX(w io.Writer, store *mapping.Store) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", mappingsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeMappingsSheet(f, store.Records(), headerStyle); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeSummarySheet(f, store.Statistics(), headerStyle); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeMappingsSheet(f *excelize.File, records []*mapping.Record, headerStyle int) error {
	if err := writeHeader(f, mappingsSheet, MappingsHeader, headerStyle); err != nil {
		return err
	}
	for i, width := range mappingsColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("convert column number: %w", err)
		}
		if err := f.SetColWidth(mappingsSheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("convert coordinates: %w", err)
		}
		row := []interface{}{
			rec.SourceCode,
			rec.SourceDisplay,
			rec.SourceSystem.String(),
			rec.TargetCode,
			rec.TargetDisplay,
			rec.Equivalence.String(),
			rec.NotesText(),
		}
		if err := f.SetSheetRow(mappingsSheet, cell, &row); err != nil {
			return fmt.Errorf("write mapping row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(mappingsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze panes: %w", err)
	}

	if len(records) > 0 {
		last, err := excelize.CoordinatesToCellName(len(MappingsHeader), len(records)+1)
		if err != nil {
			return fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.AutoFilter(mappingsSheet, "A1:"+last, nil); err != nil {
			return fmt.Errorf("set auto filter: %w", err)
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, st mapping.Statistics, headerStyle int) error {
	if err := writeHeader(f, summarySheet, []string{"Measure", "Key", "Count"}, headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	rows := [][]interface{}{
		{"total_mappings", "", st.TotalMappings},
		{"reverse_mappings", "", st.ReverseMappings},
	}
	rows = append(rows, countRows("by_traditional_system", st.ByTraditionalSystem)...)
	rows = append(rows, countRows("by_equivalence", st.ByEquivalence)...)

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+2, err)
		}
	}
	return nil
}

func countRows(measure string, counts map[string]int) [][]interface{} {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]interface{}, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []interface{}{measure, k, counts[k]})
	}
	return rows
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("set header style: %w", err)
		}
	}
	return nil
}
