package internal

import (
	"reflect"
	"strconv"
)

// Param returns a matched parameter converted to T, or the zero value when
// it is absent or cannot be parsed.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](params map[string]string, name string) T {
	v, _ := ParamOK[T](params, name)
	return v
}

// ParamOK is like Param but reports whether the parameter was present and
// converted.
func ParamOK[T ~string | ~int | ~int64 | ~float64 | ~bool](params map[string]string, name string) (T, bool) {
	raw, ok := params[name]
	if !ok {
		var zero T
		return zero, false
	}
	return convertParam[T](raw)
}

// ParamDefault returns a matched parameter converted to T, or def when it
// is absent or cannot be parsed. Useful for optional segments.
func ParamDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](params map[string]string, name string, def T) T {
	if v, ok := ParamOK[T](params, name); ok {
		return v
	}
	return def
}

// convertParam converts a raw string to T. Named types are converted by
// their underlying kind.
func convertParam[T ~string | ~int | ~int64 | ~float64 | ~bool](raw string) (T, bool) {
	var out T
	v := reflect.ValueOf(&out).Elem()
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, v.Type().Bits())
		if err != nil {
			return out, false
		}
		v.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return out, false
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return out, false
		}
		v.SetBool(b)
	default:
		return out, false
	}
	return out, true
}
