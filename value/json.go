package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// MarshalJSON encodes v compactly with object keys in insertion order.
// Native values fail with ErrNotSerializable.
func (v *Value) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := writeJSON(buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v *Value) error {
	switch v.typ {
	case NullType:
		buf.WriteString("null")
	case BooleanType:
		buf.WriteString(strconv.FormatBool(v.b))
	case NumberType:
		d, err := json.Marshal(v.n)
		if err != nil {
			return fmt.Errorf("%w: number at %s: %w", ErrNotSerializable, v.Fragment(), err)
		}
		buf.Write(d)
	case StringType:
		writeString(buf, v.s)
	case ArrayType:
		buf.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ObjectType:
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, k)
			buf.WriteByte(':')
			if err := writeJSON(buf, v.fields[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case NativeType:
		return fmt.Errorf("%w: native %T at %s", ErrNotSerializable, v.native, v.Fragment())
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// cannot fail for a string
	_ = enc.Encode(s)
	buf.Truncate(buf.Len() - 1)
}

// UnmarshalJSON replaces the content of v, keeping its position.
func (v *Value) UnmarshalJSON(d []byte) error {
	p, err := Parse(d)
	if err != nil {
		return err
	}
	v.typ, v.b, v.n, v.s, v.native = p.typ, p.b, p.n, p.s, nil
	v.elems, v.keys, v.fields = p.elems, p.keys, p.fields
	for _, c := range v.children() {
		c.parent = v
		c.setItem(v.item)
	}
	return nil
}

// Parse decodes a single JSON document, keeping object key order.
func Parse(d []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(d))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after offset %d", ErrParse, dec.InputOffset())
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch x := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return FromBool(x), nil
	case string:
		return FromString(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", x, err)
		}
		return FromFloat(f), nil
	case json.Delim:
		switch x {
		case '[':
			res := NewArray()
			for dec.More() {
				e, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				res.rawAppend(e)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return res, nil
		case '{':
			res := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				k, _ := kt.(string)
				e, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				res.rawSet(k, e)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return res, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v at offset %d", tok, dec.InputOffset())
}

// rawAppend and rawSet link a freshly built child without checks or
// events.
func (v *Value) rawAppend(c *Value) {
	c.parent = v
	c.key = strconv.Itoa(len(v.elems))
	v.elems = append(v.elems, c)
}

func (v *Value) rawSet(k string, c *Value) {
	if _, ok := v.fields[k]; !ok {
		v.keys = append(v.keys, k)
	}
	c.parent = v
	c.key = k
	v.fields[k] = c
}

// Indent returns v as indented JSON.
func (v *Value) Indent(prefix, indent string) ([]byte, error) {
	d, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(nil)
	if err := json.Indent(buf, d, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns compact JSON, with native values stripped.
func (v *Value) String() string {
	d, err := v.StripNative().MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s: %v>", v.typ, err)
	}
	return string(d)
}

// Any converts v to plain Go data: nil, bool, float64, string, []any and
// map[string]any.
func (v *Value) Any() (any, error) {
	switch v.typ {
	case NullType:
		return nil, nil
	case BooleanType:
		return v.b, nil
	case NumberType:
		return v.n, nil
	case StringType:
		return v.s, nil
	case ArrayType:
		res := make([]any, 0, len(v.elems))
		for _, e := range v.elems {
			x, err := e.Any()
			if err != nil {
				return nil, err
			}
			res = append(res, x)
		}
		return res, nil
	case ObjectType:
		res := make(map[string]any, len(v.keys))
		for _, k := range v.keys {
			x, err := v.fields[k].Any()
			if err != nil {
				return nil, err
			}
			res[k] = x
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: native %T at %s", ErrNotSerializable, v.native, v.Fragment())
}
