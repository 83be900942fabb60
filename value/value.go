package value

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
)

// Value is a JSON value together with its position in a tree: the
// container holding it, the key it is held under and the nearest Item
// owning it. Payload fields are selected by the type.
type Value struct {
	typ    Type
	item   *Item
	parent *Value
	key    string

	b      bool
	n      float64
	s      string
	elems  []*Value
	keys   []string
	fields map[string]*Value
	native any
}

func Null() *Value {
	return &Value{typ: NullType}
}

func FromBool(b bool) *Value {
	return &Value{typ: BooleanType, b: b}
}

func FromFloat(f float64) *Value {
	return &Value{typ: NumberType, n: f}
}

func FromInt(i int64) *Value {
	return &Value{typ: NumberType, n: float64(i)}
}

func FromString(s string) *Value {
	return &Value{typ: StringType, s: s}
}

// FromBinary returns a String value holding d in standard base64.
func FromBinary(d []byte) *Value {
	return FromString(base64.StdEncoding.EncodeToString(d))
}

// FromNative wraps an opaque host handle. Native values never serialize.
func FromNative(h any) *Value {
	return &Value{typ: NativeType, native: h}
}

func NewArray() *Value {
	return &Value{typ: ArrayType}
}

func NewObject() *Value {
	return &Value{typ: ObjectType, fields: map[string]*Value{}}
}

// FromSlice returns an array of vs. It panics if an element is already
// contained elsewhere.
func FromSlice(vs []*Value) *Value {
	res := NewArray()
	for _, v := range vs {
		if err := res.Append(v); err != nil {
			panic(err)
		}
	}
	return res
}

type KeyVal struct {
	Key string
	Val *Value
}

// FromKeyVals returns an object with the given entries in order. It
// panics if a value is already contained elsewhere.
func FromKeyVals(kvs []KeyVal) *Value {
	res := NewObject()
	for _, kv := range kvs {
		if err := res.Set(kv.Key, kv.Val); err != nil {
			panic(err)
		}
	}
	return res
}

// FromMap is like FromKeyVals with keys in sorted order.
func FromMap(m map[string]*Value) *Value {
	res := NewObject()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if err := res.Set(k, m[k]); err != nil {
			panic(err)
		}
	}
	return res
}

// FromAny converts plain Go data (as produced by encoding/json or a YAML
// decoder) into a detached value.
func FromAny(x any) (*Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case *Value:
		if v == nil {
			return Null(), nil
		}
		return v.Copy(), nil
	case bool:
		return FromBool(v), nil
	case string:
		return FromString(v), nil
	case []byte:
		return FromBinary(v), nil
	case float64:
		return FromFloat(v), nil
	case float32:
		return FromFloat(float64(v)), nil
	case int:
		return FromInt(int64(v)), nil
	case int32:
		return FromInt(int64(v)), nil
	case int64:
		return FromInt(v), nil
	case uint64:
		return FromFloat(float64(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %q", ErrParse, v)
		}
		return FromFloat(f), nil
	case []any:
		res := NewArray()
		for _, e := range v {
			ev, err := FromAny(e)
			if err != nil {
				return nil, err
			}
			res.rawAppend(ev)
		}
		return res, nil
	case map[string]any:
		res := NewObject()
		for _, k := range slices.Sorted(maps.Keys(v)) {
			ev, err := FromAny(v[k])
			if err != nil {
				return nil, err
			}
			res.rawSet(k, ev)
		}
		return res, nil
	default:
		return nil, fmt.Errorf("%w: cannot convert %T", ErrTypeMismatch, x)
	}
}

func (v *Value) Type() Type { return v.typ }

func (v *Value) IsNull() bool      { return v.typ == NullType }
func (v *Value) IsBoolean() bool   { return v.typ == BooleanType }
func (v *Value) IsNumber() bool    { return v.typ == NumberType }
func (v *Value) IsString() bool    { return v.typ == StringType }
func (v *Value) IsArray() bool     { return v.typ == ArrayType }
func (v *Value) IsObject() bool    { return v.typ == ObjectType }
func (v *Value) IsNative() bool    { return v.typ == NativeType }
func (v *Value) IsContainer() bool { return v.typ == ArrayType || v.typ == ObjectType }

func (v *Value) Bool() (bool, bool) {
	return v.b, v.typ == BooleanType
}

func (v *Value) Number() (float64, bool) {
	return v.n, v.typ == NumberType
}

// Int returns the number as an int64 when it is integral.
func (v *Value) Int() (int64, bool) {
	if v.typ != NumberType || v.n != math.Trunc(v.n) || math.IsInf(v.n, 0) {
		return 0, false
	}
	return int64(v.n), true
}

func (v *Value) Str() (string, bool) {
	return v.s, v.typ == StringType
}

func (v *Value) Native() (any, bool) {
	return v.native, v.typ == NativeType
}

func (v *Value) AsBool() (bool, error) {
	if v.typ != BooleanType {
		return false, typeMismatch(v, BooleanType)
	}
	return v.b, nil
}

func (v *Value) AsNumber() (float64, error) {
	if v.typ != NumberType {
		return 0, typeMismatch(v, NumberType)
	}
	return v.n, nil
}

func (v *Value) AsInt() (int64, error) {
	i, ok := v.Int()
	if !ok {
		if v.typ == NumberType {
			return 0, fmt.Errorf("%w: %v is not integral", ErrTypeMismatch, v.n)
		}
		return 0, typeMismatch(v, NumberType)
	}
	return i, nil
}

func (v *Value) AsString() (string, error) {
	if v.typ != StringType {
		return "", typeMismatch(v, StringType)
	}
	return v.s, nil
}

// AsBinary decodes a base64 string payload.
func (v *Value) AsBinary() ([]byte, error) {
	if v.typ != StringType {
		return nil, typeMismatch(v, StringType)
	}
	d, err := base64.StdEncoding.DecodeString(v.s)
	if err != nil {
		return nil, fmt.Errorf("%w: not base64: %w", ErrTypeMismatch, err)
	}
	return d, nil
}

func (v *Value) AsArray() (*Value, error) {
	if v.typ != ArrayType {
		return nil, typeMismatch(v, ArrayType)
	}
	return v, nil
}

func (v *Value) AsObject() (*Value, error) {
	if v.typ != ObjectType {
		return nil, typeMismatch(v, ObjectType)
	}
	return v, nil
}

func (v *Value) AsNative() (any, error) {
	if v.typ != NativeType {
		return nil, typeMismatch(v, NativeType)
	}
	return v.native, nil
}

// Item returns the nearest Item owning v, or nil if v is detached.
func (v *Value) Item() *Item { return v.item }

// Parent returns the container holding v, or nil.
func (v *Value) Parent() *Value { return v.parent }

// Key returns the key (or stringified index) of v in its parent.
func (v *Value) Key() (string, bool) {
	return v.key, v.parent != nil
}

// Index returns the position of v in its parent array.
func (v *Value) Index() (int, bool) {
	if v.parent == nil || v.parent.typ != ArrayType {
		return 0, false
	}
	i, err := strconv.Atoi(v.key)
	if err != nil {
		return 0, false
	}
	return i, true
}

// IsRoot reports whether v is the root value of its Item.
func (v *Value) IsRoot() bool {
	return v.item != nil && v.item.value == v
}

// contained reports whether v is owned by a container or an Item.
func (v *Value) contained() bool {
	return v.parent != nil || v.IsRoot()
}

// Copy returns a deep copy of v with no item, parent or key. Native
// handles are shared.
func (v *Value) Copy() *Value {
	return v.copyWith(nil)
}

// StripNative is like Copy but drops native values: object entries
// holding one are omitted and array elements become null.
func (v *Value) StripNative() *Value {
	if v.typ == NativeType {
		return Null()
	}
	return v.copyWith(func(e *Value) bool { return e.typ == NativeType })
}

// CopyOwned is like StripNative but also drops the roots of Items
// mounted below v, leaving only the data owned by v's Item.
func (v *Value) CopyOwned() *Value {
	if v.typ == NativeType {
		return Null()
	}
	return v.copyWith(func(e *Value) bool { return e.typ == NativeType || e.IsRoot() })
}

func (v *Value) copyWith(drop func(*Value) bool) *Value {
	res := &Value{
		typ:    v.typ,
		b:      v.b,
		n:      v.n,
		s:      v.s,
		native: v.native,
	}
	switch v.typ {
	case ArrayType:
		res.elems = make([]*Value, 0, len(v.elems))
		for _, e := range v.elems {
			if drop != nil && drop(e) {
				res.rawAppend(Null())
				continue
			}
			res.rawAppend(e.copyWith(drop))
		}
	case ObjectType:
		res.fields = make(map[string]*Value, len(v.fields))
		res.keys = make([]string, 0, len(v.keys))
		for _, k := range v.keys {
			e := v.fields[k]
			if drop != nil && drop(e) {
				continue
			}
			res.rawSet(k, e.copyWith(drop))
		}
	}
	return res
}

// Visit walks v depth first, calling f before (isPost false) and after
// (isPost true) the children. Children are skipped when f returns false.
func (v *Value) Visit(f func(v *Value, isPost bool) (bool, error)) error {
	dive, err := f(v, false)
	if err != nil {
		return err
	}
	if dive {
		for _, c := range v.children() {
			if err := c.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(v, true); err != nil {
		return err
	}
	return nil
}

func (v *Value) children() []*Value {
	switch v.typ {
	case ArrayType:
		return v.elems
	case ObjectType:
		res := make([]*Value, len(v.keys))
		for i, k := range v.keys {
			res[i] = v.fields[k]
		}
		return res
	}
	return nil
}

func nativeEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() || !ra.Comparable() {
		return false
	}
	return ra.Equal(rb)
}
