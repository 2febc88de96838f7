package classifier

// Defaults applied when the oracle leaves a field empty, matching how the
// Secretaría files uncategorized requests.
const (
	DefaultClase = "SOLICITUD-INTERÉS PARTICULAR"
	DefaultUnit  = "Secretaría de Infraestructura Física"
)

// Classification is the structured reading of one citizen message. JSON
// keys follow the legacy PQRS API so existing consumers keep working.
type Classification struct {
	Name         string `json:"nombre"`
	Phone        string `json:"telefono"`
	IDDocument   string `json:"cedula"`
	Clase        string `json:"clase"`
	RequestType  string `json:"tipo_solicitud"`
	Topic        string `json:"tema_principal"`
	Unit         string `json:"entidad_responde"`
	Neighborhood string `json:"barrio"`
	Explanation  string `json:"explicacion"`
	Radicado     string `json:"radicado"`
	IsFAQ        bool   `json:"es_faq"`
}

func (c *Classification) applyDefaults() {
	if c.Clase == "" {
		c.Clase = DefaultClase
	}
	if c.Unit == "" {
		c.Unit = DefaultUnit
	}
}
