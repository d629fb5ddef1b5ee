package dynstore

import (
	"github.com/aws/aws-lambda-go/events"

	"github.com/juliosincable/infourbi/internal/cambios"
)

var operaciones = map[string]cambios.Operacion{
	"INSERT": cambios.Creado,
	"MODIFY": cambios.Actualizado,
	"REMOVE": cambios.Eliminado,
}

// Eventos translates the stream records of the documents table into change
// events. Records without both key attributes are skipped.
func Eventos(ev events.DynamoDBEvent) []cambios.Evento {
	out := make([]cambios.Evento, 0, len(ev.Records))
	for _, r := range ev.Records {
		op, ok := operaciones[r.EventName]
		if !ok {
			continue
		}
		coleccion := claveString(r.Change.Keys, attrColeccion)
		id := claveString(r.Change.Keys, attrID)
		if coleccion == "" || id == "" {
			continue
		}
		out = append(out, cambios.Evento{Coleccion: coleccion, Operacion: op, ID: id})
	}
	return out
}

func claveString(keys map[string]events.DynamoDBAttributeValue, nombre string) string {
	v, ok := keys[nombre]
	if !ok || v.DataType() != events.DataTypeString {
		return ""
	}
	return v.String()
}
