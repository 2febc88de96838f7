package historico

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
)

const (
	defaultUnit    = "Secretaría de Infraestructura Física"
	nameQueryMax   = 50
	maxSuggestions = 10
)

// SnapshotSource hands out the current archive view. The Excel store
// implements it; tests substitute a fixed snapshot.
type SnapshotSource interface {
	Snapshot() *Snapshot
}

// SortFields are the field names the advanced query accepts in
// ordenar_por, in the order the filters endpoint advertises them.
var SortFields = []string{
	"numero_radicado",
	"fecha_radicacion",
	"nombre",
	"clasificacion",
	"estado_pqrs",
	"unidad",
	"barrio",
}

var (
	textColumns = []string{"texto_pqrs", "datos_iniciales", "seguimiento", "observacion"}
	nameColumns = []string{"nombre", "primer_nombre", "primer_apellido", "nombre_completo"}
)

// Engine answers queries against the archive snapshot. All methods are
// read-only and safe for concurrent use as long as the source is.
type Engine struct {
	source SnapshotSource
	logger *slog.Logger
}

func New(source SnapshotSource, logger *slog.Logger) *Engine {
	return &Engine{source: source, logger: logger}
}

// Count reports how many records the archive currently holds.
func (e *Engine) Count() int {
	return len(e.source.Snapshot().Records)
}

// Query narrows the archive one filter dimension at a time, in a fixed
// order, then sorts and caps the survivors. A filter whose backing
// column is missing from the workbook is skipped with a warning rather
// than failing the query. Limit <= 0 returns every match.
func (e *Engine) Query(f QueryFilter) QueryResult {
	snap := e.source.Snapshot()
	out := append([]Record(nil), snap.Records...)
	var applied []string

	if f.Text != "" {
		if e.hasAny(snap, textColumns, "texto") {
			out = filterRecords(out, func(r Record) bool { return matchText(r, snap, f.Text) })
			applied = append(applied, "texto")
		}
	}
	if f.Radicado != "" {
		if e.hasAll(snap, "numero_radicado", "radicado") {
			want := normalizeRadicado(f.Radicado)
			out = filterRecords(out, func(r Record) bool { return r.Radicado == want })
			applied = append(applied, "radicado")
		}
	}
	if f.Name != "" {
		if e.hasAny(snap, nameColumns, "nombre") {
			out = filterRecords(out, func(r Record) bool { return matchName(r, snap, f.Name) })
			applied = append(applied, "nombre")
		}
	}
	if f.DateFrom != "" {
		if e.hasAll(snap, "fecha_radicacion", "fecha") {
			out, applied = e.filterByDate(out, f, applied)
		}
	}
	if f.Classification != "" {
		if e.hasAll(snap, "clasificacion", "clasificacion") {
			out = filterRecords(out, func(r Record) bool { return containsFold(r.Classification, f.Classification) })
			applied = append(applied, "clasificacion")
		}
	}
	if f.Status != "" {
		if e.hasAll(snap, "estado_pqrs", "estado") {
			out = filterRecords(out, func(r Record) bool { return containsFold(r.Status, f.Status) })
			applied = append(applied, "estado")
		}
	}
	if f.Unit != "" {
		if e.hasAll(snap, "unidad", "unidad") {
			out = filterRecords(out, func(r Record) bool { return containsFold(r.Unit, f.Unit) })
			applied = append(applied, "unidad")
		}
	}
	if f.Neighborhood != "" {
		if e.hasAll(snap, "barrio", "barrio") {
			out = filterRecords(out, func(r Record) bool { return containsFold(r.Neighborhood, f.Neighborhood) })
			applied = append(applied, "barrio")
		}
	}

	e.sortRecords(out, snap, f.SortBy, f.SortDir)

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}

	e.logger.Info("archive query complete",
		"matched", len(out),
		"filters", strings.Join(applied, ","))

	return QueryResult{
		Total:   len(out),
		Records: out,
		Summary: Summarize(out),
		Applied: applied,
	}
}

func (e *Engine) filterByDate(records []Record, f QueryFilter, applied []string) ([]Record, []string) {
	from, err := dateparse.ParseAny(f.DateFrom)
	if err != nil {
		e.logger.Warn("unparseable date bound, date filter skipped", "fecha_inicio", f.DateFrom, "error", err)
		return records, applied
	}
	to := from
	if f.DateTo != "" {
		to, err = dateparse.ParseAny(f.DateTo)
		if err != nil {
			e.logger.Warn("unparseable date bound, date filter skipped", "fecha_fin", f.DateTo, "error", err)
			return records, applied
		}
	}
	records = filterRecords(records, func(r Record) bool {
		return !r.Filed.IsZero() && !r.Filed.Before(from) && !r.Filed.After(to)
	})
	return records, append(applied, "fecha")
}

func (e *Engine) sortRecords(records []Record, snap *Snapshot, field, dir string) {
	if field == "" {
		return
	}
	if !snap.HasColumn(field) {
		e.logger.Warn("unknown sort field, order unchanged", "field", field)
		return
	}
	asc := !strings.EqualFold(dir, "desc")
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if field == "fecha_radicacion" {
			az, bz := a.Filed.IsZero(), b.Filed.IsZero()
			if az != bz {
				return bz
			}
			if asc {
				return a.Filed.Before(b.Filed)
			}
			return b.Filed.Before(a.Filed)
		}
		av, bv := fieldValue(a, field), fieldValue(b, field)
		if asc {
			return av < bv
		}
		return bv < av
	})
}

// hasAny reports whether at least one of the columns exists, warning
// once when the whole filter has to be skipped.
func (e *Engine) hasAny(snap *Snapshot, columns []string, filter string) bool {
	for _, c := range columns {
		if snap.HasColumn(c) {
			return true
		}
	}
	e.logger.Warn("column missing, filter skipped", "filter", filter)
	return false
}

func (e *Engine) hasAll(snap *Snapshot, column, filter string) bool {
	if snap.HasColumn(column) {
		return true
	}
	e.logger.Warn("column missing, filter skipped", "filter", filter)
	return false
}

// FindByRadicado returns the first archived case whose id exactly
// matches the normalized input.
func (e *Engine) FindByRadicado(radicado string) (Record, bool) {
	want := normalizeRadicado(radicado)
	if want == "" {
		return Record{}, false
	}
	for _, r := range e.source.Snapshot().Records {
		if r.Radicado == want {
			return r, true
		}
	}
	return Record{}, false
}

// SmartQuery guesses what a free-form question is asking for: fixed
// keywords resolve to statistics or help, an all-digit token is a
// radicado lookup, anything short is treated as a requester name, and
// the rest as full-text search.
func (e *Engine) SmartQuery(query string) SmartResult {
	q := strings.ToLower(strings.TrimSpace(query))

	switch q {
	case "estadisticas", "estadísticas", "stats", "resumen":
		return SmartResult{Kind: SmartKindStatistics, Found: true, Message: "Estadísticas generadas exitosamente"}
	case "ayuda", "help", "como usar", "instrucciones":
		return SmartResult{Kind: SmartKindHelp, Found: true, Message: "Información de ayuda disponible"}
	}

	if digits := strings.ReplaceAll(q, "-", ""); digits != "" && allDigits(digits) {
		rec, ok := e.FindByRadicado(digits)
		if !ok {
			return SmartResult{
				Kind:    SmartKindRadicado,
				Message: fmt.Sprintf("No se encontró ninguna PQRS con el radicado %s", digits),
			}
		}
		detail := DetailFor(rec)
		return SmartResult{
			Kind:    SmartKindRadicado,
			Found:   true,
			Detail:  &detail,
			Message: fmt.Sprintf("PQRS encontrada con radicado %s", digits),
		}
	}

	snap := e.source.Snapshot()
	if utf8.RuneCountInString(q) <= nameQueryMax {
		matches := filterRecords(append([]Record(nil), snap.Records...), func(r Record) bool {
			return matchName(r, snap, q)
		})
		if len(matches) == 0 {
			return SmartResult{
				Kind:    SmartKindName,
				Message: fmt.Sprintf("No se encontraron PQRS para el nombre '%s'", q),
			}
		}
		return SmartResult{
			Kind:    SmartKindName,
			Found:   true,
			Records: matches,
			Message: fmt.Sprintf("Se encontraron %d PQRS para el nombre '%s'", len(matches), q),
		}
	}

	matches := filterRecords(append([]Record(nil), snap.Records...), func(r Record) bool {
		return matchText(r, snap, q)
	})
	if len(matches) == 0 {
		return SmartResult{
			Kind:    SmartKindText,
			Message: fmt.Sprintf("No se encontraron PQRS que coincidan con: '%s'", q),
		}
	}
	return SmartResult{
		Kind:    SmartKindText,
		Found:   true,
		Records: matches,
		Message: fmt.Sprintf("Se encontraron %d PQRS que coinciden con la búsqueda", len(matches)),
	}
}

// Suggestions proposes labeled filter values whose text contains the
// given fragment, capped at ten.
func (e *Engine) Suggestions(text string) []string {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil
	}
	snap := e.source.Snapshot()
	var out []string
	add := func(label string, values []string) {
		for _, v := range values {
			if len(out) >= maxSuggestions {
				return
			}
			if strings.Contains(strings.ToLower(v), needle) {
				out = append(out, label+": "+v)
			}
		}
	}
	add("Clasificación", distinctValues(snap.Records, func(r Record) string { return r.Classification }))
	add("Estado", distinctValues(snap.Records, func(r Record) string { return r.Status }))
	add("Unidad", distinctValues(snap.Records, func(r Record) string { return r.Unit }))
	return out
}

// Facets lists the distinct values per filterable dimension and the
// accepted sort fields.
func (e *Engine) Facets() Facets {
	records := e.source.Snapshot().Records
	return Facets{
		Classifications: distinctValues(records, func(r Record) string { return r.Classification }),
		Statuses:        distinctValues(records, func(r Record) string { return r.Status }),
		Units:           distinctValues(records, func(r Record) string { return r.Unit }),
		Neighborhoods:   distinctValues(records, func(r Record) string { return r.Neighborhood }),
		SortFields:      SortFields,
	}
}

// Statistics aggregates the whole archive.
func (e *Engine) Statistics() Statistics {
	records := e.source.Snapshot().Records

	byYear := make(map[int]int)
	byMonth := make(map[int]int)
	for _, r := range records {
		if r.Filed.IsZero() {
			continue
		}
		byYear[r.Filed.Year()]++
		byMonth[int(r.Filed.Month())]++
	}

	return Statistics{
		Total:            len(records),
		ByYear:           byYear,
		ByMonth:          byMonth,
		TopNeighborhoods: topCounts(records, func(r Record) string { return r.Neighborhood }, 20),
		TopUnits:         topCounts(records, func(r Record) string { return r.Unit }, 20),
		Distinct: DistinctCounts{
			Classifications: len(distinctValues(records, func(r Record) string { return r.Classification })),
			Statuses:        len(distinctValues(records, func(r Record) string { return r.Status })),
			Units:           len(distinctValues(records, func(r Record) string { return r.Unit })),
			Neighborhoods:   len(distinctValues(records, func(r Record) string { return r.Neighborhood })),
		},
	}
}

// Dashboard aggregates headline metrics as of now: total volume, cases
// whose estado mentions PENDIENTE or RESUELTA, and filing counts for
// the current month and year. Undated records count toward the total
// only.
func (e *Engine) Dashboard(now time.Time) Dashboard {
	records := e.source.Snapshot().Records

	m := DashboardMetrics{Total: len(records)}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	for _, r := range records {
		if containsFold(r.Status, "pendiente") {
			m.Pending++
		}
		if containsFold(r.Status, "resuelta") {
			m.Resolved++
		}
		if r.Filed.IsZero() || r.Filed.After(now) {
			continue
		}
		if !r.Filed.Before(monthStart) {
			m.ThisMonth++
		}
		if !r.Filed.Before(yearStart) {
			m.ThisYear++
		}
	}

	return Dashboard{Metrics: m, UpdatedAt: now.Format(time.RFC3339)}
}

// Summarize aggregates a record set into the per-query resumen: total
// count, top five values per dimension, and the filing date range.
// An empty set yields Total zero and nothing else.
func Summarize(records []Record) Summary {
	s := Summary{
		Total:            len(records),
		ByClassification: topCounts(records, func(r Record) string { return r.Classification }, 5),
		ByStatus:         topCounts(records, func(r Record) string { return r.Status }, 5),
		ByUnit:           topCounts(records, func(r Record) string { return r.Unit }, 5),
		ByNeighborhood:   topCounts(records, func(r Record) string { return r.Neighborhood }, 5),
	}
	for _, r := range records {
		if r.Filed.IsZero() {
			continue
		}
		if s.OldestDate == "" || r.Filed.Format("2006-01-02") < s.OldestDate {
			s.OldestDate = r.Filed.Format("2006-01-02")
		}
		if s.NewestDate == "" || r.Filed.Format("2006-01-02") > s.NewestDate {
			s.NewestDate = r.Filed.Format("2006-01-02")
		}
	}
	return s
}

// DetailFor renders one record for citizens, substituting placeholders
// for blank columns.
func DetailFor(r Record) CaseDetail {
	requester := r.Name
	if requester == "" {
		requester = r.FullName
	}
	return CaseDetail{
		Radicado:       r.Radicado,
		Requester:      orDefault(requester, "No especificado"),
		Subject:        orDefault(r.Subject, "No disponible"),
		Classification: orDefault(r.Classification, "No clasificado"),
		Status:         orDefault(r.Status, "Sin estado"),
		FiledAt:        orDefault(r.FiledAt, "No disponible"),
		Unit:           orDefault(r.Unit, defaultUnit),
		Neighborhood:   orDefault(r.Neighborhood, "No especificado"),
		RequestType:    orDefault(r.RequestType, "No especificado"),
		Observations:   orDefault(r.Observations, "Sin observaciones"),
		FollowUp:       orDefault(r.FollowUp, "Sin seguimiento registrado"),
		Phone:          orDefault(r.Phone, "No disponible"),
		Email:          orDefault(r.Email, "No disponible"),
	}
}

func matchText(r Record, snap *Snapshot, needle string) bool {
	if snap.HasColumn("texto_pqrs") && containsFold(r.Subject, needle) {
		return true
	}
	if snap.HasColumn("datos_iniciales") && containsFold(r.InitialData, needle) {
		return true
	}
	if snap.HasColumn("seguimiento") && containsFold(r.FollowUp, needle) {
		return true
	}
	if snap.HasColumn("observacion") && containsFold(r.Observations, needle) {
		return true
	}
	return false
}

func matchName(r Record, snap *Snapshot, needle string) bool {
	if snap.HasColumn("nombre") && containsFold(r.Name, needle) {
		return true
	}
	if snap.HasColumn("primer_nombre") && containsFold(r.FirstName, needle) {
		return true
	}
	if snap.HasColumn("primer_apellido") && containsFold(r.LastName, needle) {
		return true
	}
	if snap.HasColumn("nombre_completo") && containsFold(r.FullName, needle) {
		return true
	}
	return false
}

func fieldValue(r Record, field string) string {
	switch field {
	case "numero_radicado":
		return r.Radicado
	case "nombre":
		return r.Name
	case "primer_nombre":
		return r.FirstName
	case "primer_apellido":
		return r.LastName
	case "nombre_completo":
		return r.FullName
	case "fecha_radicacion":
		return r.FiledAt
	case "texto_pqrs":
		return r.Subject
	case "datos_iniciales":
		return r.InitialData
	case "seguimiento":
		return r.FollowUp
	case "observacion":
		return r.Observations
	case "clasificacion":
		return r.Classification
	case "tipo_solicitud":
		return r.RequestType
	case "tema":
		return r.Topic
	case "estado_pqrs":
		return r.Status
	case "correo":
		return r.Email
	case "celular":
		return r.Phone
	case "direccion":
		return r.Address
	case "barrio":
		return r.Neighborhood
	case "unidad":
		return r.Unit
	}
	return ""
}

func filterRecords(records []Record, keep func(Record) bool) []Record {
	out := records[:0]
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func normalizeRadicado(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	return s
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func distinctValues(records []Record, value func(Record) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		v := strings.TrimSpace(value(r))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func topCounts(records []Record, value func(Record) string, n int) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		if v := strings.TrimSpace(value(r)); v != "" {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	if len(counts) <= n {
		return counts
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	top := make(map[string]int, n)
	for _, k := range keys[:n] {
		top[k] = counts[k]
	}
	return top
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
