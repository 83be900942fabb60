// Package parse turns JSON, JSONC and YAML text into values.
//
// JSON input is read as JSONC unless strict parsing is requested: line
// and block comments and trailing commas are accepted. Object key order
// is preserved in every format.
package parse

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/signadot/itemscript/format"
	"github.com/signadot/itemscript/value"
	"github.com/tidwall/jsonc"
)

var ErrParse = errors.New("parse error")

type parseOpts struct {
	format format.Format
	strict bool
}

type ParseOption func(*parseOpts)

func ParseFormat(f format.Format) ParseOption {
	return func(o *parseOpts) { o.format = f }
}

func ParseJSON() ParseOption {
	return ParseFormat(format.JSONFormat)
}

func ParseYAML() ParseOption {
	return ParseFormat(format.YAMLFormat)
}

// Strict disables the JSONC extensions.
func Strict(v bool) ParseOption {
	return func(o *parseOpts) { o.strict = v }
}

// Parse decodes one document. The default format is JSON.
func Parse(d []byte, opts ...ParseOption) (*value.Value, error) {
	o := &parseOpts{}
	for _, opt := range opts {
		opt(o)
	}
	switch o.format {
	case format.YAMLFormat:
		return parseYAML(d)
	default:
		if !o.strict {
			d = jsonc.ToJSON(d)
		}
		v, err := value.Parse(d)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		return v, nil
	}
}

func parseYAML(d []byte) (*value.Value, error) {
	var x any
	if err := yaml.UnmarshalWithOptions(d, &x, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return fromYAML(x)
}

func fromYAML(x any) (*value.Value, error) {
	switch y := x.(type) {
	case yaml.MapSlice:
		res := value.NewObject()
		for _, item := range y {
			k, ok := item.Key.(string)
			if !ok {
				k = fmt.Sprint(item.Key)
			}
			v, err := fromYAML(item.Value)
			if err != nil {
				return nil, err
			}
			if err := res.Set(k, v); err != nil {
				return nil, err
			}
		}
		return res, nil
	case []any:
		res := value.NewArray()
		for _, e := range y {
			v, err := fromYAML(e)
			if err != nil {
				return nil, err
			}
			if err := res.Append(v); err != nil {
				return nil, err
			}
		}
		return res, nil
	case uint64:
		return value.FromFloat(float64(y)), nil
	}
	v, err := value.FromAny(x)
	if err != nil {
		return value.FromString(fmt.Sprint(x)), nil
	}
	return v, nil
}
