package registry

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anirudhraja/rawproto/schema"
	"github.com/yoheimuta/go-protoparser/v4/parser"
)

func packageOf(proto *parser.Proto) string {
	for _, body := range proto.ProtoBody {
		if pkg, ok := body.(*parser.Package); ok {
			return pkg.Name
		}
	}
	return ""
}

// collectNames records every message and enum declared in body under prefix.
func collectNames(prefix string, body []parser.Visitee, declared map[string]schema.TypeKind) {
	for _, v := range body {
		switch b := v.(type) {
		case *parser.Message:
			name := getFullName(prefix, b.MessageName)
			declared[name] = schema.KindMessage
			collectNames(name, b.MessageBody, declared)
		case *parser.Enum:
			declared[getFullName(prefix, b.EnumName)] = schema.KindEnum
		}
	}
}

// buildProtoFile converts a parsed file into schema hints. Field types are
// resolved against declared.
func buildProtoFile(path string, proto *parser.Proto, declared map[string]schema.TypeKind) (*schema.ProtoFile, error) {
	file := &schema.ProtoFile{
		Name:    filepath.Base(path),
		Package: packageOf(proto),
		Syntax:  "proto2",
	}
	if proto.Syntax != nil {
		file.Syntax = proto.Syntax.ProtobufVersion
	}

	for _, v := range proto.ProtoBody {
		m, ok := v.(*parser.Message)
		if !ok {
			continue
		}
		msg, err := buildMessage(file.Package, m, declared)
		if err != nil {
			return nil, err
		}
		file.Messages = append(file.Messages, msg)
	}
	return file, nil
}

func buildMessage(prefix string, m *parser.Message, declared map[string]schema.TypeKind) (*schema.Message, error) {
	msg := &schema.Message{Name: getFullName(prefix, m.MessageName)}

	for _, v := range m.MessageBody {
		switch b := v.(type) {
		case *parser.Field:
			f, err := buildField(msg.Name, b.FieldName, b.FieldNumber, b.Type, declared)
			if err != nil {
				return nil, err
			}
			switch {
			case b.IsRepeated:
				f.Label = schema.LabelRepeated
			case b.IsRequired:
				f.Label = schema.LabelRequired
			}
			msg.Fields = append(msg.Fields, f)

		case *parser.MapField:
			f, entry, err := buildMapField(msg.Name, b, declared)
			if err != nil {
				return nil, err
			}
			msg.Fields = append(msg.Fields, f)
			msg.NestedTypes = append(msg.NestedTypes, entry)

		case *parser.Oneof:
			for _, of := range b.OneofFields {
				f, err := buildField(msg.Name, of.FieldName, of.FieldNumber, of.Type, declared)
				if err != nil {
					return nil, err
				}
				f.OneofName = b.OneofName
				msg.Fields = append(msg.Fields, f)
			}

		case *parser.Message:
			nested, err := buildMessage(msg.Name, b, declared)
			if err != nil {
				return nil, err
			}
			msg.NestedTypes = append(msg.NestedTypes, nested)
		}
	}
	return msg, nil
}

func buildField(scope, name, number, typeName string, declared map[string]schema.TypeKind) (*schema.Field, error) {
	num, err := strconv.ParseInt(number, 0, 32)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: invalid field number %q", scope, name, number)
	}
	typ, err := resolveType(scope, typeName, declared)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", scope, name, err)
	}
	return &schema.Field{
		Name:     name,
		Number:   int32(num),
		Label:    schema.LabelOptional,
		Type:     typ,
		JsonName: camelCase(name, false),
	}, nil
}

// buildMapField returns the field and its synthetic entry message, named the
// way protoc names it: <FieldName>Entry nested in the declaring message.
func buildMapField(scope string, m *parser.MapField, declared map[string]schema.TypeKind) (*schema.Field, *schema.Message, error) {
	entryName := getFullName(scope, camelCase(m.MapName, true)+"Entry")

	key, err := buildField(entryName, "key", "1", m.KeyType, declared)
	if err != nil {
		return nil, nil, err
	}
	value, err := buildField(entryName, "value", "2", m.Type, declared)
	if err != nil {
		return nil, nil, err
	}
	entry := &schema.Message{
		Name:     entryName,
		Fields:   []*schema.Field{key, value},
		MapEntry: true,
	}

	f, err := buildField(scope, m.MapName, m.FieldNumber, "bytes", declared)
	if err != nil {
		return nil, nil, err
	}
	f.Label = schema.LabelRepeated
	f.Type = schema.FieldType{Kind: schema.KindMap, MessageType: entryName}
	return f, entry, nil
}

func resolveType(scope, typeName string, declared map[string]schema.TypeKind) (schema.FieldType, error) {
	if p, ok := schema.ParsePrimitive(typeName); ok {
		return schema.FieldType{Kind: schema.KindPrimitive, PrimitiveType: p}, nil
	}

	name, err := getReferencedType(typeName, scope, declared)
	if err != nil {
		// well-known types are never parsed; keep their name as a message hint
		if wkt := strings.TrimPrefix(typeName, "."); strings.HasPrefix(wkt, "google.protobuf.") {
			return schema.FieldType{Kind: schema.KindMessage, MessageType: wkt}, nil
		}
		return schema.FieldType{}, err
	}

	if declared[name] == schema.KindEnum {
		return schema.FieldType{Kind: schema.KindEnum, EnumType: name}, nil
	}
	return schema.FieldType{Kind: schema.KindMessage, MessageType: name}, nil
}
