package historico

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"
)

// columnMapping translates the archive workbook's header names to the
// canonical column names the engine understands. Headers that already
// carry a canonical name pass through untouched; anything else is
// ignored.
var columnMapping = map[string]string{
	"DOCUMENTO-CarguedeinformaciónalaplicativoPQRSDdelSIF": "numero_radicado",

	"PRIMERNOMBRE":   "primer_nombre",
	"PRIMERAPELLIDO": "primer_apellido",
	"SOLICITANTE":    "nombre_completo",

	"FECHA RADICACIÓN": "fecha_radicacion",

	"ASUNTO DE LA PETICIÓN":   "texto_pqrs",
	"DATOS INICIALES PQRSD":   "datos_iniciales",
	"SEGUIMIENTO DE LA PQRSD": "seguimiento",
	"OBSERVACIÓN":             "observacion",

	"CLASE DE SOLICITUD": "clasificacion",
	"TIPO DE SOLICITUD":  "tipo_solicitud",
	"TEMA":               "tema",
	"ESTADO":             "estado_pqrs",

	"CORREO1":                    "correo",
	"CELULAR 1":                  "celular",
	"DIRECCIÓN DEL PETICIONARIO": "direccion",
	"BARRIO, VEREDA O SECTOR":    "barrio",
	"UNIDAD":                     "unidad",

	"asunto_peticion": "texto_pqrs",
	"estado":          "estado_pqrs",
}

var canonicalColumns = map[string]bool{
	"numero_radicado":  true,
	"nombre":           true,
	"primer_nombre":    true,
	"primer_apellido":  true,
	"nombre_completo":  true,
	"fecha_radicacion": true,
	"texto_pqrs":       true,
	"datos_iniciales":  true,
	"seguimiento":      true,
	"observacion":      true,
	"clasificacion":    true,
	"tipo_solicitud":   true,
	"tema":             true,
	"estado_pqrs":      true,
	"correo":           true,
	"celular":          true,
	"direccion":        true,
	"barrio":           true,
	"unidad":           true,
}

var requiredColumns = []string{"numero_radicado", "texto_pqrs", "estado_pqrs"}

// ExcelStore reads the PQRS archive from an Excel workbook and keeps
// the parsed snapshot in memory. Reload swaps in a fresh read; readers
// always see a complete snapshot.
type ExcelStore struct {
	path   string
	logger *slog.Logger

	mu   sync.RWMutex
	snap *Snapshot
}

// OpenExcel loads the workbook at path and returns a store serving it.
func OpenExcel(path string, logger *slog.Logger) (*ExcelStore, error) {
	s := &ExcelStore{path: path, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the current archive view.
func (s *ExcelStore) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Reload re-reads the workbook from disk and replaces the snapshot.
func (s *ExcelStore) Reload() error {
	snap, err := loadWorkbook(s.path, s.logger)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return nil
}

func loadWorkbook(path string, logger *slog.Logger) (*Snapshot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s has no header row", sheets[0])
	}

	fields := make([]string, len(rows[0]))
	columns := make(map[string]bool)
	for i, header := range rows[0] {
		name := canonicalColumn(header)
		if name == "" {
			continue
		}
		fields[i] = name
		columns[name] = true
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var rec Record
		empty := true
		for i, cell := range row {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			empty = false
			setField(&rec, fields[i], value)
		}
		if empty {
			continue
		}
		if rec.FiledAt != "" {
			if t, err := dateparse.ParseAny(rec.FiledAt); err == nil {
				rec.Filed = t
			}
		}
		records = append(records, rec)
	}

	if !columns["nombre_completo"] && columns["primer_nombre"] && columns["primer_apellido"] {
		for i := range records {
			records[i].FullName = strings.TrimSpace(records[i].FirstName + " " + records[i].LastName)
		}
		columns["nombre_completo"] = true
		logger.Info("nombre_completo built from name part columns")
	}

	for _, col := range requiredColumns {
		if !columns[col] {
			logger.Warn("required column missing from workbook", "column", col)
		}
	}

	logger.Info("archive workbook loaded",
		"path", path,
		"records", len(records),
		"columns", len(columns))
	return &Snapshot{Records: records, Columns: columns}, nil
}

func canonicalColumn(header string) string {
	h := strings.TrimSpace(header)
	if h == "" {
		return ""
	}
	if name, ok := columnMapping[h]; ok {
		return name
	}
	if l := strings.ToLower(h); canonicalColumns[l] {
		return l
	}
	return ""
}

func setField(r *Record, column, value string) {
	switch column {
	case "numero_radicado":
		r.Radicado = normalizeRadicado(value)
	case "nombre":
		r.Name = value
	case "primer_nombre":
		r.FirstName = value
	case "primer_apellido":
		r.LastName = value
	case "nombre_completo":
		r.FullName = value
	case "fecha_radicacion":
		r.FiledAt = value
	case "texto_pqrs":
		r.Subject = value
	case "datos_iniciales":
		r.InitialData = value
	case "seguimiento":
		r.FollowUp = value
	case "observacion":
		r.Observations = value
	case "clasificacion":
		r.Classification = value
	case "tipo_solicitud":
		r.RequestType = value
	case "tema":
		r.Topic = value
	case "estado_pqrs":
		r.Status = value
	case "correo":
		r.Email = value
	case "celular":
		r.Phone = value
	case "direccion":
		r.Address = value
	case "barrio":
		r.Neighborhood = value
	case "unidad":
		r.Unit = value
	}
}
