package registry

import (
	"context"
	"strings"
	"testing"

	"github.com/bufbuild/protocompile"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/types/descriptorpb"
)

// compileDescriptorSet compiles the named sources with protocompile and
// serializes them, without the well-known imports, as protoc would with
// --descriptor_set_out and no --include_imports.
func compileDescriptorSet(t *testing.T, sources map[string]string, names ...string) []byte {
	t.Helper()
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(sources),
		}),
	}
	files, err := compiler.Compile(context.Background(), names...)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	set := &descriptorpb.FileDescriptorSet{}
	for _, f := range files {
		set.File = append(set.File, protodesc.ToFileDescriptorProto(f))
	}
	data, err := proto.Marshal(set)
	if err != nil {
		t.Fatalf("marshal descriptor set: %v", err)
	}
	return data
}

func TestLoadDescriptorSet(t *testing.T) {
	data := compileDescriptorSet(t,
		map[string]string{"common.proto": commonProto, "user.proto": userProto},
		"common.proto", "user.proto",
	)

	r := NewRegistry()
	if err := r.LoadDescriptorSet(data); err != nil {
		t.Fatalf("LoadDescriptorSet: %v", err)
	}

	if diff := cmp.Diff(expectedMessages, r.ListMessages()); diff != "" {
		t.Errorf("ListMessages mismatch (-want +got):\n%s", diff)
	}
	checkFieldNames(t, r)

	user, err := r.GetMessage("User")
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if f := user.FieldByNumber(6); f == nil || f.OneofName != "contact" || f.JsonName != "email" {
		t.Errorf("field 6 = %+v", f)
	}
}

// Both loaders must produce the same hints for the same sources.
func TestLoadDescriptorSet_MatchesProtoParser(t *testing.T) {
	parsed := loadUserProto(t)

	compiled := NewRegistry()
	data := compileDescriptorSet(t,
		map[string]string{"common.proto": commonProto, "user.proto": userProto},
		"common.proto", "user.proto",
	)
	if err := compiled.LoadDescriptorSet(data); err != nil {
		t.Fatalf("LoadDescriptorSet: %v", err)
	}

	for _, name := range parsed.ListMessages() {
		want, _ := parsed.GetMessage(name)
		got, err := compiled.GetMessage(name)
		if err != nil {
			t.Errorf("%s missing from descriptor set registry", name)
			continue
		}
		if len(got.Fields) != len(want.Fields) {
			t.Errorf("%s: %d fields, want %d", name, len(got.Fields), len(want.Fields))
			continue
		}
		for _, wf := range want.Fields {
			gf := got.FieldByNumber(wf.Number)
			if gf == nil {
				t.Errorf("%s: field %d missing", name, wf.Number)
				continue
			}
			if diff := cmp.Diff(*wf, *gf); diff != "" {
				t.Errorf("%s field %d mismatch (-parser +descriptor):\n%s", name, wf.Number, diff)
			}
		}
	}
}

func TestLoadDescriptorSet_Invalid(t *testing.T) {
	r := NewRegistry()
	err := r.LoadDescriptorSet([]byte{0xff, 0xff, 0xff})
	if err == nil || !strings.Contains(err.Error(), "invalid descriptor set") {
		t.Errorf("expected 'invalid descriptor set', got %v", err)
	}
}
