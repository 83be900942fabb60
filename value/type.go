package value

import "fmt"

type Type int

const (
	NullType Type = iota
	BooleanType
	NumberType
	StringType
	ArrayType
	ObjectType
	NativeType
)

func (t Type) String() string {
	s, ok := map[Type]string{
		NullType:    "Null",
		BooleanType: "Boolean",
		NumberType:  "Number",
		StringType:  "String",
		ArrayType:   "Array",
		ObjectType:  "Object",
		NativeType:  "Native",
	}[t]
	if ok {
		return s
	}
	return "<unknown type>"
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(d []byte) error {
	tt, ok := map[string]Type{
		"Null":    NullType,
		"Boolean": BooleanType,
		"Number":  NumberType,
		"String":  StringType,
		"Array":   ArrayType,
		"Object":  ObjectType,
		"Native":  NativeType,
	}[string(d)]
	if !ok {
		return fmt.Errorf("unrecognized type %q", d)
	}
	*t = tt
	return nil
}

func Types() []Type {
	return []Type{
		NullType,
		BooleanType,
		NumberType,
		StringType,
		ArrayType,
		ObjectType,
		NativeType,
	}
}

func (t Type) IsLeaf() bool {
	switch t {
	case ObjectType, ArrayType:
		return false
	default:
		return true
	}
}

// IsSerializable reports whether values of type t have a JSON form.
func (t Type) IsSerializable() bool {
	return t != NativeType
}
