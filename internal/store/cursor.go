package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Cursor points at the last document of a page. Valor is the value of the
// ordering field in that document (nil when the query orders by id only).
type Cursor struct {
	ID    string
	Valor any
}

type cursorWire struct {
	ID     string     `json:"id"`
	Valor  any        `json:"v,omitempty"`
	Tiempo *time.Time `json:"t,omitempty"`
}

// Encode renders the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	w := cursorWire{ID: c.ID}
	if t, ok := c.Valor.(time.Time); ok {
		w.Tiempo = &t
	} else {
		w.Valor = c.Valor
	}
	raw, err := json.Marshal(w)
	if err != nil {
		// Valor comes from a decoded document, so it is always marshalable.
		raw, _ = json.Marshal(cursorWire{ID: c.ID})
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a token produced by Cursor.Encode. An empty token yields nil.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCursor, err)
	}
	var w cursorWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCursor, err)
	}
	if w.ID == "" {
		return nil, fmt.Errorf("%w: falta id", ErrCursor)
	}
	c := &Cursor{ID: w.ID, Valor: w.Valor}
	if w.Tiempo != nil {
		c.Valor = *w.Tiempo
	}
	return c, nil
}
