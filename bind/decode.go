package bind

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// decimalHook parses strings bound for numeric destinations in base 10.
// Weak decoding alone would read "010" as octal and accept 0x, 0b and
// underscore forms.
func decimalHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok || s == "" {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, to.Bits())
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as %s: %w", s, to, err)
		}
		return reflect.ValueOf(n).Convert(to).Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, to.Bits())
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as %s: %w", s, to, err)
		}
		return reflect.ValueOf(n).Convert(to).Interface(), nil
	case reflect.Float32, reflect.Float64:
		if strings.ContainsAny(s, "xX_") {
			return nil, fmt.Errorf("cannot parse %q as %s: not a decimal number", s, to)
		}
		f, err := strconv.ParseFloat(s, to.Bits())
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as %s: %w", s, to, err)
		}
		return reflect.ValueOf(f).Convert(to).Interface(), nil
	}
	return data, nil
}

// scalarHooks runs before weak decoding of a single value. Durations are
// matched ahead of decimalHook since time.Duration has an integer kind.
func scalarHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		decimalHook,
	)
}

func decodeScalar(s string, t reflect.Type) (reflect.Value, error) {
	p := reflect.New(t)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       scalarHooks(),
		Result:           p.Interface(),
	})
	if err != nil {
		return reflect.Value{}, err
	}
	if err := dec.Decode(s); err != nil {
		return reflect.Value{}, err
	}
	return p.Elem(), nil
}
