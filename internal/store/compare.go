package store

import (
	"strings"
	"time"
)

// Lookup resolves a dotted field path ("coordenadas.lat") in a document.
func Lookup(datos map[string]any, campo string) (any, bool) {
	var cur any = datos
	for _, parte := range strings.Split(campo, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[parte]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Compare orders two stored values. Numbers compare numerically across
// types, strings by byte order (the case sensitive order document stores
// use), timestamps chronologically and booleans false < true. ok is false
// when the values are not comparable.
func Compare(a, b any) (c int, ok bool) {
	if fa, okA := toFloat(a); okA {
		fb, okB := toFloat(b)
		if !okB {
			return 0, false
		}
		return cmpOrdered(fa, fb), true
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

// Match evaluates one clause against a document.
func Match(datos map[string]any, cl Clause) bool {
	v, ok := Lookup(datos, cl.Campo)
	switch cl.Operador {
	case Igual:
		return ok && equal(v, cl.Valor)
	case Distinto:
		return ok && !equal(v, cl.Valor)
	case Menor, MenorIgual, Mayor, MayorIgual:
		if !ok {
			return false
		}
		c, comparable := Compare(v, cl.Valor)
		if !comparable {
			return false
		}
		switch cl.Operador {
		case Menor:
			return c < 0
		case MenorIgual:
			return c <= 0
		case Mayor:
			return c > 0
		default:
			return c >= 0
		}
	case En:
		if !ok {
			return false
		}
		for _, cand := range asSlice(cl.Valor) {
			if equal(v, cand) {
				return true
			}
		}
		return false
	case ArrayContiene:
		if !ok {
			return false
		}
		for _, elem := range asSlice(v) {
			if equal(elem, cl.Valor) {
				return true
			}
		}
		return false
	}
	return false
}

func equal(a, b any) bool {
	if c, ok := Compare(a, b); ok {
		return c == 0
	}
	return a == nil && b == nil
}

func asSlice(v any) []any {
	switch x := v.(type) {
	case []any:
		return x
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case []int:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out
	case []float64:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out
	}
	return nil
}

func cmpOrdered(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
