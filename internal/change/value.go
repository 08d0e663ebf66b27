package change

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strconv"
)

// ValueKind tags the scalar stored in a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindInteger
	KindReal
	KindText
	KindBlob
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is the tagged scalar a change carries: one of SQLite's five
// storage classes. The zero Value is null.
//
// Values round-trip through database/sql natively (Valuer/Scanner), so a
// change row's val column stores the scalar as-is rather than an encoded
// form.
type Value struct {
	kind ValueKind
	i    int64
	r    float64
	t    string
	b    []byte
}

// NullValue is the null scalar.
var NullValue = Value{}

// Integer returns an integer value.
func Integer(i int64) Value {
	return Value{kind: KindInteger, i: i}
}

// Real returns a floating-point value.
func Real(r float64) Value {
	return Value{kind: KindReal, r: r}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, t: s}
}

// Blob returns a blob value. The slice is not copied; callers must not
// mutate it afterwards.
func Blob(b []byte) Value {
	return Value{kind: KindBlob, b: b}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

// Int returns the integer payload; zero unless Kind is KindInteger.
func (v Value) Int() int64 { return v.i }

// Float returns the real payload; zero unless Kind is KindReal.
func (v Value) Float() float64 { return v.r }

// Str returns the text payload; empty unless Kind is KindText.
func (v Value) Str() string { return v.t }

// Bytes returns the blob payload; nil unless Kind is KindBlob.
func (v Value) Bytes() []byte { return v.b }

// EstimatedByteSize is a rough upper bound on the value's wire cost:
// fixed 8 bytes for the numeric kinds, payload length for text and blob.
func (v Value) EstimatedByteSize() int {
	switch v.kind {
	case KindInteger, KindReal:
		return 8
	case KindText:
		return len(v.t)
	case KindBlob:
		return len(v.b)
	default:
		return 0
	}
}

// Equal reports deep equality of kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.i == o.i
	case KindReal:
		return v.r == o.r
	case KindText:
		return v.t == o.t
	case KindBlob:
		return bytes.Equal(v.b, o.b)
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.r, 'g', -1, 64)
	case KindText:
		return strconv.Quote(v.t)
	case KindBlob:
		return fmt.Sprintf("x'%x'", v.b)
	default:
		return "NULL"
	}
}

// Value implements driver.Valuer, storing the scalar natively.
func (v Value) Value() (driver.Value, error) {
	switch v.kind {
	case KindInteger:
		return v.i, nil
	case KindReal:
		return v.r, nil
	case KindText:
		return v.t, nil
	case KindBlob:
		return v.b, nil
	default:
		return nil, nil
	}
}

// Scan implements sql.Scanner. The driver's dynamic type decides the
// kind: int64, float64, string, []byte or nil. Blob bytes are copied
// because drivers may reuse the buffer between rows.
func (v *Value) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		*v = NullValue
	case int64:
		*v = Integer(s)
	case float64:
		*v = Real(s)
	case string:
		*v = Text(s)
	case []byte:
		*v = Blob(bytes.Clone(s))
	default:
		return fmt.Errorf("scan value: unexpected type %T", src)
	}
	return nil
}
