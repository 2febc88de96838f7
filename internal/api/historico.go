package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sif-medellin/sifgpt/internal/historico"
)

// defaultQueryLimit applies when an advanced query omits limit; an
// explicit limit <= 0 still means unlimited.
const defaultQueryLimit = 100

type consultaRequest struct {
	Consulta string `json:"consulta"`
	Tipo     string `json:"tipo_consulta"`
}

type sugerenciasRequest struct {
	Texto string `json:"texto"`
}

// exportRequest nests the filters, unlike the advanced endpoint whose
// body is the filter itself. Formato defaults to json.
type exportRequest struct {
	Filtros json.RawMessage `json:"filtros"`
	Formato string          `json:"formato"`
}

type consultaResponse struct {
	Success bool                  `json:"success"`
	Kind    string                `json:"tipo_consulta"`
	Total   int                   `json:"total_resultados,omitempty"`
	Datos   any                   `json:"datos,omitempty"`
	Info    *historico.CaseDetail `json:"informacion,omitempty"`
	Mensaje string                `json:"mensaje"`
}

type avanzadaResponse struct {
	Success bool `json:"success"`
	historico.QueryResult
}

var helpPayload = map[string]any{
	"consulta_basica": map[string]any{
		"descripcion": "Consulta simple por texto, nombre o radicado",
		"ejemplo":     "Buscar PQRS relacionadas con 'reparación'",
	},
	"consulta_avanzada": map[string]any{
		"descripcion": "Consulta con múltiples filtros y opciones de ordenamiento",
		"filtros_disponibles": []string{
			"texto", "radicado", "nombre", "fecha_inicio", "fecha_fin",
			"clasificacion", "estado", "unidad", "barrio", "limit",
			"ordenar_por", "orden",
		},
	},
	"estadisticas": map[string]any{
		"descripcion": "Obtener estadísticas generales del histórico",
	},
}

func (s *Server) consulta(w http.ResponseWriter, r *http.Request) {
	var req consultaRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Se requiere un JSON con la consulta")
		return
	}

	// An explicit tipo_consulta overrides dispatching on the text, so
	// the stats and help views are reachable with an empty consulta.
	sr := historico.SmartResult{Found: true}
	switch req.Tipo {
	case "estadisticas":
		sr.Kind = historico.SmartKindStatistics
		sr.Message = "Estadísticas generadas exitosamente"
	case "ayuda":
		sr.Kind = historico.SmartKindHelp
		sr.Message = "Información de ayuda disponible"
	default:
		if strings.TrimSpace(req.Consulta) == "" {
			s.writeError(w, http.StatusBadRequest, "Se debe proporcionar una consulta o seleccionar un tipo válido")
			return
		}
		sr = s.engine.SmartQuery(req.Consulta)
	}

	resp := consultaResponse{Success: sr.Found, Kind: sr.Kind, Mensaje: sr.Message}
	switch sr.Kind {
	case historico.SmartKindStatistics:
		resp.Datos = s.engine.Statistics()
	case historico.SmartKindHelp:
		resp.Datos = helpPayload
	default:
		resp.Total = len(sr.Records)
		if len(sr.Records) > 0 {
			resp.Datos = sr.Records
		}
		resp.Info = sr.Detail
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) consultaAvanzada(w http.ResponseWriter, r *http.Request) {
	filter := historico.QueryFilter{Limit: defaultQueryLimit}
	if err := decodeJSON(r, &filter); err != nil {
		s.writeError(w, http.StatusBadRequest, "Debe enviar un JSON con los filtros de búsqueda")
		return
	}
	if emptyFilter(filter) {
		s.writeError(w, http.StatusBadRequest, "Debe especificar al menos un filtro de búsqueda")
		return
	}

	result := s.engine.Query(filter)
	s.writeJSON(w, http.StatusOK, avanzadaResponse{Success: true, QueryResult: result})
}

// emptyFilter reports whether no filter dimension was set. The default
// limit does not count as a filter on its own.
func emptyFilter(f historico.QueryFilter) bool {
	if f.Limit == defaultQueryLimit {
		f.Limit = 0
	}
	return f == historico.QueryFilter{}
}

func (s *Server) sugerencias(w http.ResponseWriter, r *http.Request) {
	var req sugerenciasRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Debe enviar un JSON con el campo 'texto'")
		return
	}
	texto := strings.TrimSpace(req.Texto)
	if utf8.RuneCountInString(texto) < 2 {
		s.writeError(w, http.StatusBadRequest, "El texto debe tener al menos 2 caracteres")
		return
	}

	sug := s.engine.Suggestions(texto)
	if sug == nil {
		sug = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"texto_busqueda":    texto,
		"sugerencias":       sug,
		"total_sugerencias": len(sug),
	})
}

func (s *Server) exportar(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil || len(req.Filtros) == 0 {
		s.writeError(w, http.StatusBadRequest, "Debe enviar un JSON con los filtros de exportación")
		return
	}

	filter := historico.QueryFilter{Limit: defaultQueryLimit}
	if err := json.Unmarshal(req.Filtros, &filter); err != nil {
		s.writeError(w, http.StatusBadRequest, "Filtros inválidos")
		return
	}
	result := s.engine.Query(filter)

	switch req.Formato {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=historico_pqrs.csv")
		if err := historico.WriteCSV(w, result.Records); err != nil {
			s.logger.Error("csv export failed", "error", err)
		}
	case "excel":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename=historico_pqrs.xlsx")
		if err := historico.WriteWorkbook(w, result.Records); err != nil {
			s.logger.Error("excel export failed", "error", err)
		}
	default:
		s.writeJSON(w, http.StatusOK, map[string]any{
			"success":         true,
			"formato":         "json",
			"total_registros": result.Total,
			"datos":           result.Records,
		})
	}
}

func (s *Server) filtros(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":             true,
		"filtros_disponibles": s.engine.Facets(),
		"total_registros":     s.engine.Count(),
	})
}

func (s *Server) estadisticas(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"estadisticas": s.engine.Statistics(),
	})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"dashboard": s.engine.Dashboard(time.Now()),
	})
}
