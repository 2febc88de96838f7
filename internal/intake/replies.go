package intake

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sif-medellin/sifgpt/internal/classifier"
	"github.com/sif-medellin/sifgpt/internal/historico"
)

const (
	replyRepeat   = "Disculpe, no logré entender su mensaje. ¿Podría repetirlo, por favor?"
	replyDegraded = "Ha ocurrido un error al procesar su solicitud. ¿Podría repetir su petición, por favor?"
)

const subjectPreview = 200

func caseFoundReply(rec historico.Record) string {
	subject := strings.TrimSpace(rec.Subject)
	if utf8.RuneCountInString(subject) > subjectPreview {
		subject = string([]rune(subject)[:subjectPreview]) + "..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Encontré su solicitud con radicado %s.\n", rec.Radicado)
	fmt.Fprintf(&b, "Estado: %s.\n", fallback(rec.Status, "En proceso"))
	fmt.Fprintf(&b, "Fecha de radicación: %s.\n", fallback(rec.FiledAt, "No disponible"))
	fmt.Fprintf(&b, "Unidad responsable: %s.\n", fallback(rec.Unit, classifier.DefaultUnit))
	fmt.Fprintf(&b, "Barrio: %s.\n", fallback(rec.Neighborhood, "No especificado"))
	if subject != "" {
		fmt.Fprintf(&b, "Asunto: %s\n", subject)
	}
	b.WriteString("¿Puedo ayudarle con algo más?")
	return b.String()
}

func caseNotFoundReply(radicado string) string {
	return fmt.Sprintf("No encontré ninguna solicitud con el radicado %s. "+
		"Verifique que el número sea correcto; si la radicó hace poco, es posible que aún no aparezca en el sistema.", radicado)
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
