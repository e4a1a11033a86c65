package registry

import (
	"fmt"

	"github.com/anirudhraja/rawproto/schema"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// LoadDescriptorSet registers the messages of a serialized FileDescriptorSet,
// as written by `protoc --descriptor_set_out` or `buf build -o`. Imports that
// are missing from the set are tolerated; fields referring to them keep the
// referenced type name.
func (r *Registry) LoadDescriptorSet(data []byte) error {
	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &set); err != nil {
		return fmt.Errorf("invalid descriptor set: %w", err)
	}
	return r.LoadFileDescriptorSet(&set)
}

// LoadFileDescriptorSet registers the messages of an already decoded set.
func (r *Registry) LoadFileDescriptorSet(set *descriptorpb.FileDescriptorSet) error {
	files, err := protodesc.FileOptions{AllowUnresolvable: true}.NewFiles(set)
	if err != nil {
		return fmt.Errorf("invalid descriptor set: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	declared := r.declaredNames()
	files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		if _, ok := r.files[fd.Path()]; ok {
			return true
		}
		file := &schema.ProtoFile{
			Name:     fd.Path(),
			Package:  string(fd.Package()),
			Syntax:   fd.Syntax().String(),
			Messages: messagesFromDescriptors(fd.Messages()),
		}
		imports := fd.Imports()
		for i := 0; i < imports.Len(); i++ {
			file.Imports = append(file.Imports, imports.Get(i).Path())
		}
		collectEnumNames(fd.Enums(), declared)
		collectMessageEnumNames(fd.Messages(), declared)
		r.addFile(fd.Path(), file, declared)
		return true
	})
	return nil
}

func messagesFromDescriptors(mds protoreflect.MessageDescriptors) []*schema.Message {
	msgs := make([]*schema.Message, 0, mds.Len())
	for i := 0; i < mds.Len(); i++ {
		md := mds.Get(i)
		msg := &schema.Message{
			Name:        string(md.FullName()),
			MapEntry:    md.IsMapEntry(),
			NestedTypes: messagesFromDescriptors(md.Messages()),
		}
		fields := md.Fields()
		for j := 0; j < fields.Len(); j++ {
			msg.Fields = append(msg.Fields, fieldFromDescriptor(fields.Get(j)))
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func fieldFromDescriptor(fd protoreflect.FieldDescriptor) *schema.Field {
	f := &schema.Field{
		Name:     string(fd.Name()),
		Number:   int32(fd.Number()),
		Label:    schema.LabelOptional,
		JsonName: fd.JSONName(),
	}
	switch fd.Cardinality() {
	case protoreflect.Repeated:
		f.Label = schema.LabelRepeated
	case protoreflect.Required:
		f.Label = schema.LabelRequired
	}
	if oneof := fd.ContainingOneof(); oneof != nil && !oneof.IsSynthetic() {
		f.OneofName = string(oneof.Name())
	}

	switch {
	case fd.IsMap():
		f.Type = schema.FieldType{Kind: schema.KindMap, MessageType: string(fd.Message().FullName())}
	case fd.Kind() == protoreflect.MessageKind || fd.Kind() == protoreflect.GroupKind:
		f.Type = schema.FieldType{Kind: schema.KindMessage, MessageType: string(fd.Message().FullName())}
	case fd.Kind() == protoreflect.EnumKind:
		f.Type = schema.FieldType{Kind: schema.KindEnum, EnumType: string(fd.Enum().FullName())}
	default:
		p, _ := schema.ParsePrimitive(fd.Kind().String())
		f.Type = schema.FieldType{Kind: schema.KindPrimitive, PrimitiveType: p}
	}
	return f
}

func collectEnumNames(eds protoreflect.EnumDescriptors, declared map[string]schema.TypeKind) {
	for i := 0; i < eds.Len(); i++ {
		declared[string(eds.Get(i).FullName())] = schema.KindEnum
	}
}

func collectMessageEnumNames(mds protoreflect.MessageDescriptors, declared map[string]schema.TypeKind) {
	for i := 0; i < mds.Len(); i++ {
		md := mds.Get(i)
		collectEnumNames(md.Enums(), declared)
		collectMessageEnumNames(md.Messages(), declared)
	}
}
