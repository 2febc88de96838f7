// Package historico loads the PQRS archive workbook and answers
// filtered, sorted and aggregated queries over it.
package historico

import "time"

// Record is one archived PQRS case with the column names the rest of
// the platform understands. FiledAt keeps the raw cell text for
// display; Filed carries the parsed date when the cell was parseable.
type Record struct {
	Radicado       string    `json:"numero_radicado"`
	Name           string    `json:"nombre,omitempty"`
	FirstName      string    `json:"primer_nombre,omitempty"`
	LastName       string    `json:"primer_apellido,omitempty"`
	FullName       string    `json:"nombre_completo,omitempty"`
	FiledAt        string    `json:"fecha_radicacion,omitempty"`
	Filed          time.Time `json:"-"`
	Subject        string    `json:"texto_pqrs,omitempty"`
	InitialData    string    `json:"datos_iniciales,omitempty"`
	FollowUp       string    `json:"seguimiento,omitempty"`
	Observations   string    `json:"observacion,omitempty"`
	Classification string    `json:"clasificacion,omitempty"`
	RequestType    string    `json:"tipo_solicitud,omitempty"`
	Topic          string    `json:"tema,omitempty"`
	Status         string    `json:"estado_pqrs,omitempty"`
	Email          string    `json:"correo,omitempty"`
	Phone          string    `json:"celular,omitempty"`
	Address        string    `json:"direccion,omitempty"`
	Neighborhood   string    `json:"barrio,omitempty"`
	Unit           string    `json:"unidad,omitempty"`
}

// Snapshot is an immutable view of the loaded archive. Columns records
// which canonical columns the source workbook actually carried, so the
// engine can skip filters that have nothing to match against.
type Snapshot struct {
	Records []Record
	Columns map[string]bool
}

// HasColumn reports whether the source carried the named column.
func (s *Snapshot) HasColumn(name string) bool {
	return s != nil && s.Columns[name]
}

// QueryFilter mirrors the request body of the advanced query endpoint.
// Zero values mean "not filtered"; Limit <= 0 means no cap.
type QueryFilter struct {
	Text           string `json:"texto,omitempty"`
	Radicado       string `json:"radicado,omitempty"`
	Name           string `json:"nombre,omitempty"`
	DateFrom       string `json:"fecha_inicio,omitempty"`
	DateTo         string `json:"fecha_fin,omitempty"`
	Classification string `json:"clasificacion,omitempty"`
	Status         string `json:"estado,omitempty"`
	Unit           string `json:"unidad,omitempty"`
	Neighborhood   string `json:"barrio,omitempty"`
	SortBy         string `json:"ordenar_por,omitempty"`
	SortDir        string `json:"orden,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// QueryResult is the outcome of an advanced query: the surviving
// records in order, an aggregate summary over them, and the names of
// the filter dimensions that actually ran.
type QueryResult struct {
	Total   int      `json:"total_resultados"`
	Records []Record `json:"datos"`
	Summary Summary  `json:"resumen"`
	Applied []string `json:"filtros_aplicados,omitempty"`
}

// Summary aggregates a record set: total count, the five most frequent
// values per dimension, and the filing date range found.
type Summary struct {
	Total            int            `json:"total_registros"`
	ByClassification map[string]int `json:"por_clasificacion,omitempty"`
	ByStatus         map[string]int `json:"por_estado,omitempty"`
	ByUnit           map[string]int `json:"por_unidad,omitempty"`
	ByNeighborhood   map[string]int `json:"por_barrio,omitempty"`
	OldestDate       string         `json:"fecha_mas_antigua,omitempty"`
	NewestDate       string         `json:"fecha_mas_reciente,omitempty"`
}

// CaseDetail is the citizen-facing view of a single case, with every
// blank column replaced by a readable placeholder.
type CaseDetail struct {
	Radicado       string `json:"numero_radicado"`
	Requester      string `json:"solicitante"`
	Subject        string `json:"asunto"`
	Classification string `json:"clasificacion"`
	Status         string `json:"estado_actual"`
	FiledAt        string `json:"fecha_radicacion"`
	Unit           string `json:"unidad_responsable"`
	Neighborhood   string `json:"barrio_sector"`
	RequestType    string `json:"tipo_solicitud"`
	Observations   string `json:"observaciones"`
	FollowUp       string `json:"seguimiento"`
	Phone          string `json:"telefono_contacto"`
	Email          string `json:"correo_contacto"`
}

// Facets lists the distinct values available per filterable dimension,
// in first-appearance order, plus the sortable field names.
type Facets struct {
	Classifications []string `json:"clasificaciones"`
	Statuses        []string `json:"estados"`
	Units           []string `json:"unidades"`
	Neighborhoods   []string `json:"barrios"`
	SortFields      []string `json:"campos_ordenamiento"`
}

// Statistics summarizes the whole archive: filing volume per year and
// month, the twenty busiest neighborhoods and units, and how many
// distinct values each dimension holds.
type Statistics struct {
	Total            int            `json:"total_registros"`
	ByYear           map[int]int    `json:"por_año"`
	ByMonth          map[int]int    `json:"por_mes"`
	TopNeighborhoods map[string]int `json:"top_barrios"`
	TopUnits         map[string]int `json:"top_unidades"`
	Distinct         DistinctCounts `json:"resumen"`
}

// DistinctCounts holds per-dimension cardinalities for Statistics.
type DistinctCounts struct {
	Classifications int `json:"total_clasificaciones"`
	Statuses        int `json:"total_estados"`
	Units           int `json:"total_unidades"`
	Neighborhoods   int `json:"total_barrios"`
}

// Dashboard is the operational overview for the monitoring view.
type Dashboard struct {
	Metrics   DashboardMetrics `json:"metricas"`
	UpdatedAt string           `json:"ultima_actualizacion"`
}

// DashboardMetrics counts cases by headline state and recency.
type DashboardMetrics struct {
	Total     int `json:"total_pqrs"`
	Pending   int `json:"pqrs_pendientes"`
	Resolved  int `json:"pqrs_resueltas"`
	ThisMonth int `json:"pqrs_este_mes"`
	ThisYear  int `json:"pqrs_este_año"`
}

// Kinds of smart query resolution.
const (
	SmartKindRadicado   = "por_radicado"
	SmartKindName       = "busqueda_nombre"
	SmartKindText       = "busqueda_texto"
	SmartKindStatistics = "estadisticas"
	SmartKindHelp       = "ayuda"
)

// SmartResult is the outcome of a free-form query after the engine has
// decided what the caller was asking for. Detail is set for radicado
// lookups that found a case; Records for name and text searches.
type SmartResult struct {
	Kind    string      `json:"tipo_consulta"`
	Found   bool        `json:"-"`
	Records []Record    `json:"datos,omitempty"`
	Detail  *CaseDetail `json:"informacion,omitempty"`
	Message string      `json:"mensaje"`
}
