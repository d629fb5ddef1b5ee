package store

import (
	"sort"
	"strings"
)

// Evaluar runs q over docs in memory for backends that cannot filter or
// order server side. docs is reordered in place; the result aliases it.
func Evaluar(docs []Documento, q Query) []Documento {
	desc := q.Direccion == Desc
	out := docs[:0]
	for _, d := range docs {
		if !cumpleTodas(d.Datos, q.Where) {
			continue
		}
		if q.OrderBy != "" {
			// documents without the ordering field are left out, like Firestore does
			if _, ok := Lookup(d.Datos, q.OrderBy); !ok {
				continue
			}
		}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		return antes(out[i], out[j], q.OrderBy, desc)
	})

	if q.After != nil {
		start := len(out)
		pivot := Documento{ID: q.After.ID}
		if q.OrderBy != "" {
			pivot.Datos = map[string]any{}
			SetPath(pivot.Datos, q.OrderBy, q.After.Valor)
		}
		for i, d := range out {
			if antes(pivot, d, q.OrderBy, desc) {
				start = i
				break
			}
		}
		out = out[start:]
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// SetPath writes v at a dotted field path, creating intermediate maps.
func SetPath(m map[string]any, campo string, v any) {
	partes := strings.Split(campo, ".")
	for _, p := range partes[:len(partes)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[partes[len(partes)-1]] = v
}

func cumpleTodas(datos map[string]any, where []Clause) bool {
	for _, cl := range where {
		if !Match(datos, cl) {
			return false
		}
	}
	return true
}

// antes orders by the ordering field and then by id, both in the query direction.
func antes(a, b Documento, orderBy string, desc bool) bool {
	if orderBy != "" {
		va, _ := Lookup(a.Datos, orderBy)
		vb, _ := Lookup(b.Datos, orderBy)
		if c, ok := Compare(va, vb); ok && c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
	}
	if desc {
		return a.ID > b.ID
	}
	return a.ID < b.ID
}
