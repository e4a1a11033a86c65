package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/anirudhraja/rawproto/schema"
	"github.com/anirudhraja/rawproto/wire"
	"github.com/yoheimuta/go-protoparser/v4/parser"
)

// Registry stores field-name hints for message types. We look this up when
// rendering a schema-less decode with names instead of field numbers.
type Registry struct {
	// ProtoDirectories are the roots searched for .proto files and imports.
	ProtoDirectories []string

	mu              sync.RWMutex
	files           map[string]*schema.ProtoFile // file path -> file
	messages        map[string]*schema.Message   // fully qualified name -> message
	enums           map[string]struct{}          // fully qualified enum names
	parsedProtoBody map[string]*parser.Proto     // file path -> parsed body
	protoEntities   map[string]*protoFileEntity  // file path -> import graph node
}

type protoFileEntity struct {
	imports []string
}

// NewRegistry creates an empty registry that resolves .proto files and their
// imports against protoDirs. With no directories the current directory is
// used.
func NewRegistry(protoDirs ...string) *Registry {
	if len(protoDirs) == 0 {
		protoDirs = []string{"."}
	}
	return &Registry{
		ProtoDirectories: protoDirs,
		files:            make(map[string]*schema.ProtoFile),
		messages:         make(map[string]*schema.Message),
		enums:            make(map[string]struct{}),
		parsedProtoBody:  make(map[string]*parser.Proto),
		protoEntities:    make(map[string]*protoFileEntity),
	}
}

// LoadProtoFile parses protoFile and everything it imports, then registers
// every message they declare. protoFile is resolved against
// ProtoDirectories.
func (r *Registry) LoadProtoFile(protoFile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths, err := r.getAllProtoInfo(protoFile)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", protoFile, err)
	}

	// Pass 1: register all message and enum names so references resolve
	// regardless of declaration order or file.
	declared := r.declaredNames()
	for _, path := range paths {
		pkg := packageOf(r.parsedProtoBody[path])
		collectNames(pkg, r.parsedProtoBody[path].ProtoBody, declared)
	}

	// Pass 2: build message definitions with resolved field types.
	for _, path := range paths {
		if _, ok := r.files[path]; ok {
			continue
		}
		file, err := buildProtoFile(path, r.parsedProtoBody[path], declared)
		if err != nil {
			return fmt.Errorf("failed to build %s: %w", path, err)
		}
		file.Imports = r.protoEntities[path].imports
		r.addFile(path, file, declared)
	}

	return nil
}

// declaredNames returns the names already registered, tagged by kind.
func (r *Registry) declaredNames() map[string]schema.TypeKind {
	declared := make(map[string]schema.TypeKind, len(r.messages)+len(r.enums))
	for name := range r.messages {
		declared[name] = schema.KindMessage
	}
	for name := range r.enums {
		declared[name] = schema.KindEnum
	}
	return declared
}

// addFile registers file and all the messages it declares. Callers hold mu.
func (r *Registry) addFile(path string, file *schema.ProtoFile, declared map[string]schema.TypeKind) {
	r.files[path] = file
	var register func(msgs []*schema.Message)
	register = func(msgs []*schema.Message) {
		for _, msg := range msgs {
			msg.Index()
			r.messages[msg.Name] = msg
			register(msg.NestedTypes)
		}
	}
	register(file.Messages)

	for name, kind := range declared {
		if kind == schema.KindEnum {
			r.enums[name] = struct{}{}
		}
	}
}

// GetMessage retrieves a message definition by name
func (r *Registry) GetMessage(name string) (*schema.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.TrimPrefix(name, ".")
	if msg, exists := r.messages[name]; exists {
		return msg, nil
	}

	// Try without package prefix
	for _, fullName := range r.sortedMessageNames() {
		if strings.HasSuffix(fullName, "."+name) {
			return r.messages[fullName], nil
		}
	}

	return nil, fmt.Errorf("message not found: %s", name)
}

// ListMessages returns all registered message names in lexical order.
func (r *Registry) ListMessages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedMessageNames()
}

func (r *Registry) sortedMessageNames() []string {
	names := make([]string, 0, len(r.messages))
	for name := range r.messages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldName implements wire.FieldNamer. fieldType is the fully qualified
// message type of message and map fields, "" otherwise.
func (r *Registry) FieldName(messageType string, num wire.FieldNumber) (string, string, bool) {
	if messageType == "" {
		return "", "", false
	}

	r.mu.RLock()
	msg, ok := r.messages[messageType]
	r.mu.RUnlock()
	if !ok {
		return "", "", false
	}

	f := msg.FieldByNumber(int32(num))
	if f == nil {
		return "", "", false
	}

	switch f.Type.Kind {
	case schema.KindMessage, schema.KindMap:
		return f.Name, f.Type.MessageType, true
	default:
		return f.Name, "", true
	}
}

func getFullName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
