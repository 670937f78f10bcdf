package chsink

// Kind represents the semantic type of a dataset column.
type Kind int

const (
	// KindString represents free-form text values
	KindString Kind = iota
	// KindDateTime represents date or timestamp values
	KindDateTime
	// KindInt32 represents 32-bit signed integer values
	KindInt32
	// KindInt64 represents 64-bit signed integer values
	KindInt64
	// KindFloat32 represents 32-bit floating point values
	KindFloat32
	// KindFloat64 represents 64-bit floating point values
	KindFloat64
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindDateTime:
		return "datetime"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	default:
		return "string"
	}
}

// kindTypeMap maps a column's semantic kind to its default ClickHouse column
// type. Columns with an unknown kind fall back to String.
var kindTypeMap = map[Kind]string{
	KindDateTime: "DateTime64(3)",
	KindInt32:    "Int32",
	KindInt64:    "Int64",
	KindFloat32:  "Float32",
	KindFloat64:  "Float64",
	KindString:   "String",
}

// DefaultTypeOverrides is the name-based override mapping applied when a
// Config does not provide its own. Columns named Date or date are stored as
// millisecond-precision timestamps regardless of their inferred kind.
var DefaultTypeOverrides = map[string]string{
	"Date": "DateTime64(3)",
	"date": "DateTime64(3)",
}

// typeMap resolves a column's ClickHouse type. A name-based override always
// wins over the kind-based default. Lookup is total: any column resolves to
// some type.
type typeMap struct {
	overrides map[string]string
}

// resolveType returns the ClickHouse column type for a column. Name matching
// against the override map is exact and case-sensitive.
func (m typeMap) resolveType(columnName string, kind Kind) string {
	if t, ok := m.overrides[columnName]; ok {
		return t
	}
	if t, ok := kindTypeMap[kind]; ok {
		return t
	}
	return "String"
}
