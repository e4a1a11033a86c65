package registry

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/anirudhraja/rawproto/schema"
	protoparser "github.com/yoheimuta/go-protoparser/v4"
	protoparserparser "github.com/yoheimuta/go-protoparser/v4/parser"
)

// getAllProtoInfo uses DFS to fetch the file and everything it imports from
// the proto directories, parsing each file once.
func (r *Registry) getAllProtoInfo(protoFile string) ([]string, error) {
	visited := make(map[string]struct{}) // to make sure we don't end up in a loop
	result := make([]string, 0)

	var dfs func(protoFile string) error
	dfs = func(protoFile string) error {
		if _, ok := visited[protoFile]; ok {
			return nil
		}
		visited[protoFile] = struct{}{}
		result = append(result, protoFile)
		protoFileEntity := &protoFileEntity{
			imports: make([]string, 0),
		}

		protoBytes, err := os.ReadFile(protoFile)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		parsedBody, err := protoparser.Parse(bytes.NewBuffer(protoBytes))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", protoFile, err)
		}
		r.parsedProtoBody[protoFile] = parsedBody

		for _, body := range parsedBody.ProtoBody {
			b, ok := body.(*protoparserparser.Import) // resolve relation for each import
			if !ok {
				continue
			}
			importPath := strings.Trim(b.Location, `"`)
			// well-known types are referenced by name only
			if strings.HasPrefix(importPath, "google/protobuf/") {
				continue
			}
			fullImportPath, err := r.findIfProtoExists(importPath)
			if err != nil {
				return err
			}
			protoFileEntity.imports = append(protoFileEntity.imports, fullImportPath)
			if err = dfs(fullImportPath); err != nil {
				return err
			}
		}
		r.protoEntities[protoFile] = protoFileEntity
		return nil
	}

	// run dfs on the input proto path
	protoPath, err := r.findIfProtoExists(protoFile)
	if err != nil {
		return nil, err
	}
	if err := dfs(protoPath); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Registry) findIfProtoExists(protoPath string) (string, error) {
	var (
		fullPath      string
		fullProtoPath string
		err           error
	)
	protoPath = strings.Trim(protoPath, `"`)
	if !strings.HasSuffix(protoPath, ".proto") {
		return "", fmt.Errorf("is not a .proto file: %s", protoPath)
	}
	for _, dir := range r.ProtoDirectories {
		fullPath = path.Join(dir, protoPath)
		if _, err = os.Stat(fullPath); err == nil {
			fullProtoPath = fullPath
			break
		}
	}
	if fullProtoPath == "" {
		return "", fmt.Errorf("path does not exist: %s: %w", fullPath, err)
	}
	return fullProtoPath, nil
}

/*
getReferencedType returns the fully qualified name of a referenced type, be
it nested, top level in the same package, or declared in another package.
Ref - https://github.com/protocolbuffers/protobuf/blob/b7a5772caf08d62a20fd1bca258f501fa4db022c/src/google/protobuf/descriptor.proto#L186-L191
*/
func getReferencedType(typeName, prefix string, allResolvedEntities map[string]schema.TypeKind) (string, error) {
	// check if fully qualified prefixed by dot
	if strings.HasPrefix(typeName, ".") {
		return getFullyQualifiedType(typeName, allResolvedEntities)
	}
	// try resolving from inner entities up till the parent package
	if result, ok := splitNameAndCheck(typeName, prefix, allResolvedEntities); ok {
		return result, nil
	}
	// check if the entity is referenced from another package via its package name
	if _, ok := allResolvedEntities[typeName]; ok {
		return typeName, nil
	}
	return "", fmt.Errorf("unable to resolve type name: %s", typeName)
}

// splitNameAndCheck walks prefix from the innermost scope outwards, trying
// typeName relative to each scope.
func splitNameAndCheck(typeName, prefix string, allResolvedEntities map[string]schema.TypeKind) (string, bool) {
	prefixSplit := strings.Split(prefix, ".")

	for len(prefixSplit) > 0 && prefixSplit[0] != "" {
		entityName := strings.Join(prefixSplit, ".") + "." + typeName
		if _, ok := allResolvedEntities[entityName]; ok {
			return entityName, true
		}
		// Omit the last element in each iteration as we go level above to outer entity
		prefixSplit = prefixSplit[:len(prefixSplit)-1]
	}
	return "", false
}

func getFullyQualifiedType(typeName string, allResolvedEntities map[string]schema.TypeKind) (string, error) {
	typeName = strings.TrimPrefix(typeName, ".")
	if _, ok := allResolvedEntities[typeName]; ok {
		return typeName, nil
	}
	return "", fmt.Errorf("unable to resolve fully qualified type name: .%s", typeName)
}

// camelCase converts a snake_case name to CamelCase, or to the
// lowerCamelCase protoc uses for JSON names when upperFirst is false.
func camelCase(name string, upperFirst bool) string {
	var sb strings.Builder
	upper := upperFirst
	for _, c := range name {
		switch {
		case c == '_':
			upper = true
		case upper && c >= 'a' && c <= 'z':
			sb.WriteRune(c - 'a' + 'A')
			upper = false
		default:
			sb.WriteRune(c)
			upper = false
		}
	}
	return sb.String()
}
