package wire

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML renders m as an ordered YAML mapping keyed by field number.
func (m Message) MarshalYAML() (interface{}, error) {
	return YAMLNode(m, nil, "")
}

// YAMLNode builds the YAML form of m, naming fields through namer when it
// is non-nil. Bytes render as !!binary scalars.
func YAMLNode(m Message, namer FieldNamer, messageType string) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, num := range m.FieldNumbers() {
		key, fieldType := strconv.FormatUint(uint64(num), 10), ""
		keyTag := "!!int"
		if namer != nil {
			if name, typ, ok := namer.FieldName(messageType, num); ok {
				key, fieldType, keyTag = name, typ, "!!str"
			}
		}

		value, err := yamlValue(m[num], namer, fieldType)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", num, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: keyTag, Value: key},
			value,
		)
	}
	return node, nil
}

func yamlValue(v Value, namer FieldNamer, messageType string) (*yaml.Node, error) {
	switch v.Kind() {
	case KindVarInt:
		c := Candidates(v.varint)
		if len(c) == 1 {
			return yamlInt(c[0]), nil
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, x := range c {
			seq.Content = append(seq.Content, yamlInt(x))
		}
		return seq, nil
	case KindFloat:
		return yamlFloat(float64(v.f32), 32), nil
	case KindDouble:
		return yamlFloat(v.f64, 64), nil
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.str}, nil
	case KindBytes:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!binary", Value: Base64Encode(v.bytes)}, nil
	case KindMessage:
		return YAMLNode(v.msg, namer, messageType)
	default:
		return nil, fmt.Errorf("cannot render %s value", v.Kind())
	}
}

func yamlInt(x any) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(x)}
}

func yamlFloat(f float64, bitSize int) *yaml.Node {
	var s string
	switch {
	case math.IsNaN(f):
		s = ".nan"
	case math.IsInf(f, 1):
		s = ".inf"
	case math.IsInf(f, -1):
		s = "-.inf"
	default:
		s = strconv.FormatFloat(f, 'g', -1, bitSize)
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
}
