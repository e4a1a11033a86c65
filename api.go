package rawproto

import (
	"context"
	"fmt"
	"runtime"

	"github.com/anirudhraja/rawproto/registry"
	"github.com/anirudhraja/rawproto/wire"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// ===== SCHEMA-LESS API =====

// Decode decodes protobuf bytes without a schema using wire.DefaultConfig.
func Decode(data []byte) (wire.Message, error) {
	return wire.Decode(data)
}

// DecodeBase64 decodes standard Base64 text and then its protobuf payload.
func DecodeBase64(s string) (wire.Message, error) {
	data, err := wire.Base64Decode(s)
	if err != nil {
		return nil, err
	}
	return wire.Decode(data)
}

// Encode re-emits a decoded or hand-built tree as wire bytes.
func Encode(m wire.Message) ([]byte, error) {
	return wire.Marshal(m)
}

// ParseJSON rebuilds a tree from the JSON text form produced by Render.
func ParseJSON(data []byte) (wire.Message, error) {
	return wire.ParseJSON(data)
}

// Format selects the text form produced by Render.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json or yaml)", s)
	}
}

// ===== NAMING HINTS =====

// Inspector decodes payloads and renders them, naming fields from loaded
// .proto files or descriptor sets when a message type is known.
type Inspector struct {
	registry *registry.Registry
	cfg      wire.Config
}

// New creates an Inspector. protoDirs are the roots used to resolve .proto
// files and their imports.
func New(cfg wire.Config, protoDirs ...string) *Inspector {
	return &Inspector{
		registry: registry.NewRegistry(protoDirs...),
		cfg:      cfg,
	}
}

// LoadProtoFile loads naming hints from a .proto file and its imports.
func (i *Inspector) LoadProtoFile(path string) error {
	return i.registry.LoadProtoFile(path)
}

// LoadDescriptorSet loads naming hints from a serialized FileDescriptorSet.
func (i *Inspector) LoadDescriptorSet(data []byte) error {
	return i.registry.LoadDescriptorSet(data)
}

// ResolveMessage returns the fully qualified name of a loaded message type,
// accepting names without their package prefix.
func (i *Inspector) ResolveMessage(name string) (string, error) {
	msg, err := i.registry.GetMessage(name)
	if err != nil {
		return "", err
	}
	return msg.Name, nil
}

// Decode decodes data with the Inspector's configuration.
func (i *Inspector) Decode(data []byte) (wire.Message, error) {
	return wire.NewDecoderWithConfig(data, i.cfg).Decode()
}

// DecodeAll decodes every payload concurrently and returns the results in
// input order. The first failure cancels the remaining work.
func (i *Inspector) DecodeAll(ctx context.Context, payloads [][]byte) ([]wire.Message, error) {
	results := make([]wire.Message, len(payloads))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for idx, data := range payloads {
		idx, data := idx, data
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			msg, err := i.Decode(data)
			if err != nil {
				return fmt.Errorf("payload %d: %w", idx, err)
			}
			results[idx] = msg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Encode re-emits m honoring the Inspector's ShortestVarints setting.
func (i *Inspector) Encode(m wire.Message) ([]byte, error) {
	return wire.NewEncoderWithConfig(nil, i.cfg).WriteMessage(m)
}

// Render produces the text form of m. When messageType names a loaded
// message, fields it declares are keyed by name instead of number. Unknown
// fields and fields of unknown types keep their numbers.
func (i *Inspector) Render(m wire.Message, format Format, messageType string) ([]byte, error) {
	var namer wire.FieldNamer
	if messageType != "" {
		fullName, err := i.ResolveMessage(messageType)
		if err != nil {
			return nil, err
		}
		namer, messageType = i.registry, fullName
	}

	switch format {
	case FormatJSON, "":
		return wire.MarshalJSONNamed(m, namer, messageType)
	case FormatYAML:
		node, err := wire.YAMLNode(m, namer, messageType)
		if err != nil {
			return nil, err
		}
		return yaml.Marshal(node)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// ===== REGISTRY ACCESS =====

// GetRegistry returns the schema registry used for field names.
func (i *Inspector) GetRegistry() *registry.Registry { return i.registry }
// ListMessages returns the fully qualified names of all loaded messages.
func (i *Inspector) ListMessages() []string { return i.registry.ListMessages() }
