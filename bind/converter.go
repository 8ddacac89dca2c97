package bind

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/bronystylecrazy/amvisie/body"
	"github.com/mitchellh/mapstructure"
)

// Converter materializes typed values from a parsed request body.
type Converter interface {
	Convert(b *body.ParsedBody, t reflect.Type) (reflect.Value, error)
	ConvertList(b *body.ParsedBody, elem reflect.Type) ([]reflect.Value, error)
}

// ConverterFactory selects the converter for a request content type.
type ConverterFactory interface {
	ConverterFor(contentType string) Converter
}

// Converters is a ConverterFactory keyed by media type.
type Converters struct {
	byMedia  map[string]Converter
	fallback Converter
}

// DefaultConverters uses JSONConverter for JSON media types and
// FormConverter for everything else.
func DefaultConverters() *Converters {
	return NewConverters(FormConverter{}).Register(body.MediaJSON, JSONConverter{})
}

func NewConverters(fallback Converter) *Converters {
	return &Converters{byMedia: map[string]Converter{}, fallback: fallback}
}

func (c *Converters) Register(mediaType string, conv Converter) *Converters {
	c.byMedia[strings.ToLower(mediaType)] = conv
	return c
}

func (c *Converters) ConverterFor(contentType string) Converter {
	mt := body.MediaType(contentType)
	if conv, ok := c.byMedia[mt]; ok {
		return conv
	}
	if strings.HasSuffix(mt, "+json") {
		if conv, ok := c.byMedia[body.MediaJSON]; ok {
			return conv
		}
	}
	return c.fallback
}

// FormConverter decodes body fields into exported struct fields. Field names
// match case-insensitively or through a `form` tag. Values are HTML-escaped
// unless the parser already escaped them or Raw is set.
type FormConverter struct {
	Raw bool
}

func (c FormConverter) Convert(b *body.ParsedBody, t reflect.Type) (reflect.Value, error) {
	v, _, err := decodeForm(c.input(b), t)
	return v, err
}

// ConvertList builds one item per position of the longest list field. Item i
// receives element i of every list field and every scalar field. Items that
// decode no field at all are dropped.
func (c FormConverter) ConvertList(b *body.ParsedBody, elem reflect.Type) ([]reflect.Value, error) {
	input := c.input(b)
	n := 1
	for _, v := range input {
		if list, ok := v.([]string); ok && len(list) > n {
			n = len(list)
		}
	}

	out := make([]reflect.Value, 0, n)
	for i := 0; i < n; i++ {
		item := make(map[string]any, len(input))
		for k, v := range input {
			if list, ok := v.([]string); ok {
				if i < len(list) {
					item[k] = list[i]
				}
				continue
			}
			item[k] = v
		}
		v, md, err := decodeForm(item, elem)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if len(md.Keys) == 0 {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (c FormConverter) input(b *body.ParsedBody) map[string]any {
	if b == nil {
		return map[string]any{}
	}
	escape := !c.Raw && !b.Escaped
	input := make(map[string]any, len(b.Fields)+len(b.Files))
	for name, field := range b.Files {
		input[name] = field
	}
	for k, v := range b.Fields {
		if escape {
			v = body.EscapeValue(v)
		}
		input[k] = v
	}
	return input
}

func decodeForm(input map[string]any, t reflect.Type) (reflect.Value, mapstructure.Metadata, error) {
	var md mapstructure.Metadata
	target, result := allocate(t)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "form",
		WeaklyTypedInput: true,
		Metadata:         &md,
		Result:           target.Interface(),
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			lastValueHook,
			fileFieldHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.TextUnmarshallerHookFunc(),
			decimalHook,
		),
	})
	if err != nil {
		return reflect.Value{}, md, err
	}
	if err := dec.Decode(input); err != nil {
		return reflect.Value{}, md, err
	}
	return result(), md, nil
}

// lastValueHook collapses a list onto a scalar destination the same way
// body.Fields.String does.
func lastValueHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	list, ok := data.([]string)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Slice, reflect.Array, reflect.Interface:
		return data, nil
	}
	if len(list) == 0 {
		return "", nil
	}
	return list[len(list)-1], nil
}

// fileFieldHook keeps uploads from landing in fields of any other type.
func fileFieldHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from != fileFieldType || to == fileFieldType || to.Kind() == reflect.Interface || to == reflect.PointerTo(fileFieldType) {
		return data, nil
	}
	return reflect.Zero(to).Interface(), nil
}

var fileFieldType = reflect.TypeFor[body.FileField]()

// allocate returns a pointer to decode into and a func yielding the value
// of type t.
func allocate(t reflect.Type) (reflect.Value, func() reflect.Value) {
	if t.Kind() == reflect.Pointer {
		p := reflect.New(t.Elem())
		return p, func() reflect.Value { return p }
	}
	p := reflect.New(t)
	return p, p.Elem
}

// JSONConverter decodes the raw body as JSON.
type JSONConverter struct{}

func (JSONConverter) Convert(b *body.ParsedBody, t reflect.Type) (reflect.Value, error) {
	target, result := allocate(t)
	if b != nil && len(bytes.TrimSpace(b.Raw)) > 0 {
		if err := json.Unmarshal(b.Raw, target.Interface()); err != nil {
			return reflect.Value{}, err
		}
	}
	return result(), nil
}

// ConvertList accepts either a JSON array or a single JSON object.
func (c JSONConverter) ConvertList(b *body.ParsedBody, elem reflect.Type) ([]reflect.Value, error) {
	if b == nil {
		return nil, nil
	}
	raw := bytes.TrimSpace(b.Raw)
	if len(raw) == 0 {
		return nil, nil
	}
	if raw[0] != '[' {
		v, err := c.Convert(b, elem)
		if err != nil {
			return nil, err
		}
		return []reflect.Value{v}, nil
	}

	list := reflect.New(reflect.SliceOf(elem))
	if err := json.Unmarshal(raw, list.Interface()); err != nil {
		return nil, err
	}
	out := make([]reflect.Value, list.Elem().Len())
	for i := range out {
		out[i] = list.Elem().Index(i)
	}
	return out, nil
}
