package historico

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// exportSheet names the single sheet of generated workbooks.
const exportSheet = "Historico_PQRS"

// exportColumns fixes the column order of exported files.
var exportColumns = []string{
	"numero_radicado",
	"nombre",
	"primer_nombre",
	"primer_apellido",
	"nombre_completo",
	"fecha_radicacion",
	"texto_pqrs",
	"datos_iniciales",
	"seguimiento",
	"observacion",
	"clasificacion",
	"tipo_solicitud",
	"tema",
	"estado_pqrs",
	"correo",
	"celular",
	"direccion",
	"barrio",
	"unidad",
}

// WriteCSV streams the records as CSV with the canonical column header.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(exportColumns))
	for _, r := range records {
		for i, col := range exportColumns {
			row[i] = fieldValue(r, col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", r.Radicado, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteWorkbook writes the records as a single-sheet xlsx workbook.
func WriteWorkbook(w io.Writer, records []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(exportColumns))
	for i, col := range exportColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		row := make([]any, len(exportColumns))
		for j, col := range exportColumns {
			row[j] = fieldValue(r, col)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row for %s: %w", r.Radicado, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
