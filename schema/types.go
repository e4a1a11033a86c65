package schema

// ProtoFile represents a single .proto file or FileDescriptorProto that
// contributed naming hints.
type ProtoFile struct {
	Name     string     `json:"name"`     // file.proto
	Package  string     `json:"package"`  // package name
	Syntax   string     `json:"syntax"`   // proto2 or proto3
	Imports  []string   `json:"imports"`  // resolved import paths
	Messages []*Message `json:"messages"` // top-level message definitions
}

// Message holds the naming hints of a message type. Nothing here is used to
// validate payloads; the wire decoder stays schema-less.
type Message struct {
	Name        string     `json:"name"`         // fully qualified: "pkg.User.Address"
	Fields      []*Field   `json:"fields"`       // message fields, oneof members included
	NestedTypes []*Message `json:"nested_types"` // nested messages
	MapEntry    bool       `json:"map_entry"`    // synthetic entry of a map field

	byNumber map[int32]*Field
}

// Field represents a message field
type Field struct {
	Name      string     `json:"name"`                 // "user_name"
	Number    int32      `json:"number"`               // 1
	Label     FieldLabel `json:"label"`                // optional, required, repeated
	Type      FieldType  `json:"type"`                 // field type information
	JsonName  string     `json:"json_name,omitempty"`  // JSON field name
	OneofName string     `json:"oneof_name,omitempty"` // enclosing oneof, if any
}

// Index builds the field-number lookup used by FieldByNumber. Call it once
// after Fields is final; the registry does so when it registers a message.
func (m *Message) Index() {
	m.byNumber = make(map[int32]*Field, len(m.Fields))
	for _, f := range m.Fields {
		m.byNumber[f.Number] = f
	}
}

// FieldByNumber returns the field declared with num, or nil.
func (m *Message) FieldByNumber(num int32) *Field {
	if m.byNumber != nil {
		return m.byNumber[num]
	}
	for _, f := range m.Fields {
		if f.Number == num {
			return f
		}
	}
	return nil
}

// FieldLabel represents field labels
type FieldLabel string

const (
	LabelOptional FieldLabel = "optional"
	LabelRequired FieldLabel = "required"
	LabelRepeated FieldLabel = "repeated"
)

// FieldType represents field type information
type FieldType struct {
	Kind          TypeKind      `json:"kind"`                     // primitive, message, enum, map
	PrimitiveType PrimitiveType `json:"primitive_type,omitempty"` // for primitive types
	MessageType   string        `json:"message_type,omitempty"`   // fully qualified message or map entry type
	EnumType      string        `json:"enum_type,omitempty"`      // fully qualified enum type
}

// TypeKind represents the kind of field type
type TypeKind string

const (
	KindPrimitive TypeKind = "primitive"
	KindMessage   TypeKind = "message"
	KindEnum      TypeKind = "enum"
	KindMap       TypeKind = "map"
)

// PrimitiveType represents protobuf primitive types
type PrimitiveType string

const (
	TypeDouble   PrimitiveType = "double"
	TypeFloat    PrimitiveType = "float"
	TypeInt64    PrimitiveType = "int64"
	TypeUint64   PrimitiveType = "uint64"
	TypeInt32    PrimitiveType = "int32"
	TypeFixed64  PrimitiveType = "fixed64"
	TypeFixed32  PrimitiveType = "fixed32"
	TypeBool     PrimitiveType = "bool"
	TypeString   PrimitiveType = "string"
	TypeBytes    PrimitiveType = "bytes"
	TypeUint32   PrimitiveType = "uint32"
	TypeSfixed32 PrimitiveType = "sfixed32"
	TypeSfixed64 PrimitiveType = "sfixed64"
	TypeSint32   PrimitiveType = "sint32"
	TypeSint64   PrimitiveType = "sint64"
)

var primitives = map[string]PrimitiveType{
	"double":   TypeDouble,
	"float":    TypeFloat,
	"int64":    TypeInt64,
	"uint64":   TypeUint64,
	"int32":    TypeInt32,
	"fixed64":  TypeFixed64,
	"fixed32":  TypeFixed32,
	"bool":     TypeBool,
	"string":   TypeString,
	"bytes":    TypeBytes,
	"uint32":   TypeUint32,
	"sfixed32": TypeSfixed32,
	"sfixed64": TypeSfixed64,
	"sint32":   TypeSint32,
	"sint64":   TypeSint64,
}

// ParsePrimitive reports whether name is a scalar type keyword.
func ParsePrimitive(name string) (PrimitiveType, bool) {
	t, ok := primitives[name]
	return t, ok
}
