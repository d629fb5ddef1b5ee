package store

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampoID is the field name the converter attaches inbound and strips outbound.
const CampoID = "id"

// Converter maps a record type to and from stored documents using the
// record's json tags as field names.
type Converter[T any] struct{}

// ToDocument encodes v for storage. The id field is never written.
// time.Time values are kept as-is so each backend stores a native timestamp.
func (Converter[T]) ToDocument(v T) (map[string]any, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("converter: valor nil")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("converter: se esperaba struct, no %s", rv.Kind())
	}
	datos := encodeStruct(rv)
	delete(datos, CampoID)
	return datos, nil
}

// FromDocument decodes a stored document into T, attaching the document id
// and coercing backend-native timestamps into time.Time.
func (Converter[T]) FromDocument(doc Documento) (T, error) {
	var out T
	datos := make(map[string]any, len(doc.Datos)+1)
	for k, v := range doc.Datos {
		datos[k] = Normalize(v)
	}
	datos[CampoID] = doc.ID

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Squash:     true,
		Result:     &out,
		DecodeHook: timestampHook,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(datos); err != nil {
		return out, fmt.Errorf("converter: documento %s: %w", doc.ID, err)
	}
	return out, nil
}

// Normalize converts driver-specific containers and timestamps (BSON
// documents, arrays and dates) into plain maps, slices and time.Time.
func Normalize(v any) any {
	switch x := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = Normalize(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = Normalize(e)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = Normalize(e)
		}
		return m
	case primitive.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(x.T), 0).UTC()
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	default:
		return v
	}
}

var timeType = reflect.TypeOf(time.Time{})

// timestampHook coerces the non-native representations a timestamp can take
// after a round trip through JSON-based backends.
func timestampHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}
	switch x := data.(type) {
	case time.Time:
		return x, nil
	case string:
		if x == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return nil, fmt.Errorf("timestamp %q: %w", x, err)
		}
		return t, nil
	case int64:
		return time.UnixMilli(x).UTC(), nil
	case int32:
		return time.UnixMilli(int64(x)).UTC(), nil
	case int:
		return time.UnixMilli(int64(x)).UTC(), nil
	case float64:
		return time.UnixMilli(int64(x)).UTC(), nil
	case map[string]any:
		// Firestore REST style {seconds, nanos}
		sec, _ := toFloat(x["seconds"])
		nanos, _ := toFloat(x["nanos"])
		return time.Unix(int64(sec), int64(nanos)).UTC(), nil
	}
	return data, nil
}

func encodeStruct(rv reflect.Value) map[string]any {
	rt := rv.Type()
	out := make(map[string]any, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		fv := rv.Field(i)
		if f.Anonymous && name == "" && fv.Kind() == reflect.Struct {
			for k, v := range encodeStruct(fv) {
				out[k] = v
			}
			continue
		}
		if name == "" {
			name = f.Name
		}
		if strings.Contains(opts, "omitempty") && fv.IsZero() {
			continue
		}
		out[name] = encodeValue(fv)
	}
	return out
}

func encodeValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return encodeValue(v.Elem())
	case reflect.Struct:
		if v.Type() == timeType {
			return v.Interface()
		}
		return encodeStruct(v)
	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = encodeValue(v.Index(i))
		}
		return out
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return v.Interface()
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = encodeValue(iter.Value())
		}
		return out
	default:
		return v.Interface()
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
