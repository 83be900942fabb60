// Package encode writes values as JSON or YAML.
package encode

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/signadot/itemscript/format"
	"github.com/signadot/itemscript/value"
)

type EncState struct {
	depth, indent int

	format format.Format
	wire   bool

	Color func(value.Type, ColorAttr, string) string
}

// Encode writes v to w followed by a newline. Native values fail with
// value.ErrNotSerializable.
func Encode(v *value.Value, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{
		indent: 2,
	}
	for _, opt := range opts {
		opt(es)
	}
	buf := bytes.NewBuffer(nil)
	switch es.format {
	case format.YAMLFormat:
		if err := encodeYAML(v, buf, es); err != nil {
			return err
		}
	default:
		if err := encodeJSON(v, buf, es); err != nil {
			return err
		}
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (es *EncState) color(t value.Type, a ColorAttr, s string) string {
	if es.Color == nil {
		return s
	}
	return es.Color(t, a, s)
}

func (es *EncState) newline(buf *bytes.Buffer) {
	if es.wire {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(" ", es.depth*es.indent))
}

func encodeJSON(v *value.Value, buf *bytes.Buffer, es *EncState) error {
	switch v.Type() {
	case value.ArrayType:
		if v.Len() == 0 {
			buf.WriteString(es.color(value.ArrayType, SepColor, "[]"))
			return nil
		}
		buf.WriteString(es.color(value.ArrayType, SepColor, "["))
		es.depth++
		for i, e := range v.Elements() {
			if i > 0 {
				buf.WriteString(es.color(value.ArrayType, SepColor, ","))
			}
			es.newline(buf)
			if err := encodeJSON(e, buf, es); err != nil {
				return err
			}
		}
		es.depth--
		es.newline(buf)
		buf.WriteString(es.color(value.ArrayType, SepColor, "]"))
		return nil
	case value.ObjectType:
		if v.Len() == 0 {
			buf.WriteString(es.color(value.ObjectType, SepColor, "{}"))
			return nil
		}
		buf.WriteString(es.color(value.ObjectType, SepColor, "{"))
		es.depth++
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteString(es.color(value.ObjectType, SepColor, ","))
			}
			es.newline(buf)
			kd, _ := value.FromString(k).MarshalJSON()
			buf.WriteString(es.color(value.ObjectType, FieldColor, string(kd)))
			sep := ": "
			if es.wire {
				sep = ":"
			}
			buf.WriteString(es.color(value.ObjectType, SepColor, sep))
			if err := encodeJSON(v.Get(k), buf, es); err != nil {
				return err
			}
		}
		es.depth--
		es.newline(buf)
		buf.WriteString(es.color(value.ObjectType, SepColor, "}"))
		return nil
	}
	d, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	buf.WriteString(es.color(v.Type(), ValueColor, string(d)))
	return nil
}

func encodeYAML(v *value.Value, buf *bytes.Buffer, es *EncState) error {
	x, err := toYAML(v)
	if err != nil {
		return err
	}
	yopts := []yaml.EncodeOption{yaml.Indent(es.indent)}
	if es.wire {
		yopts = append(yopts, yaml.Flow(true))
	}
	d, err := yaml.MarshalWithOptions(x, yopts...)
	if err != nil {
		return fmt.Errorf("yaml: %w", err)
	}
	buf.Write(d)
	return nil
}

// toYAML converts v to data go-yaml encodes with key order preserved.
func toYAML(v *value.Value) (any, error) {
	switch v.Type() {
	case value.ArrayType:
		res := make([]any, 0, v.Len())
		for _, e := range v.Elements() {
			x, err := toYAML(e)
			if err != nil {
				return nil, err
			}
			res = append(res, x)
		}
		return res, nil
	case value.ObjectType:
		res := make(yaml.MapSlice, 0, v.Len())
		for _, k := range v.Keys() {
			x, err := toYAML(v.Get(k))
			if err != nil {
				return nil, err
			}
			res = append(res, yaml.MapItem{Key: k, Value: x})
		}
		return res, nil
	case value.NumberType:
		if i, ok := v.Int(); ok {
			return i, nil
		}
	}
	return v.Any()
}

// MustString encodes v as compact JSON and panics on error.
func MustString(v *value.Value) string {
	buf := bytes.NewBuffer(nil)
	if err := Encode(v, buf, EncodeWire(true)); err != nil {
		panic(err)
	}
	return strings.TrimSpace(buf.String())
}
