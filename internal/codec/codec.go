// Package codec translates between the editor wire format and the domain
// model. On the wire every graph node is a generic {id, type, data}
// envelope; decoding resolves the data bag into the payload struct
// matching the node type, so the rest of the codebase never touches an
// untyped map.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/formflow-go/formflow/pkg/domain"
)

// position is the editor's canvas placement. It is layout, not logic;
// decoding drops it and encoding regenerates the editor's default layout.
type position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type wireNode struct {
	ID       string         `json:"id" yaml:"id"`
	Type     string         `json:"type" yaml:"type"`
	Position position       `json:"position" yaml:"position"`
	Data     map[string]any `json:"data" yaml:"data"`
}

type wireDoc struct {
	Title    string           `json:"title,omitempty" yaml:"title,omitempty"`
	Sections []domain.Section `json:"sections" yaml:"sections"`
	Nodes    []wireNode       `json:"nodes" yaml:"nodes"`
	Edges    []domain.Edge    `json:"edges" yaml:"edges"`
}

// DecodeJSON parses an editor document from JSON.
func DecodeJSON(data []byte) (*domain.Flow, error) {
	var doc wireDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse flow document: %w", err)
	}
	return fromWire(&doc)
}

// DecodeYAML parses an editor document from YAML.
func DecodeYAML(data []byte) (*domain.Flow, error) {
	var doc wireDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse flow document: %w", err)
	}
	return fromWire(&doc)
}

// EncodeJSON renders a flow as an indented editor document.
func EncodeJSON(flow *domain.Flow) ([]byte, error) {
	doc, err := toWire(flow)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// EncodeYAML renders a flow as a YAML editor document.
func EncodeYAML(flow *domain.Flow) ([]byte, error) {
	doc, err := toWire(flow)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

func fromWire(doc *wireDoc) (*domain.Flow, error) {
	flow := &domain.Flow{
		Title:    doc.Title,
		Sections: doc.Sections,
		Edges:    doc.Edges,
	}

	for _, wn := range doc.Nodes {
		node := domain.Node{ID: wn.ID, Kind: domain.NodeKind(wn.Type)}
		var err error
		switch node.Kind {
		case domain.KindSection:
			node.Section, err = decodeData[domain.SectionPayload](wn.Data)
		case domain.KindCondition:
			node.Condition, err = decodeData[domain.ConditionPayload](wn.Data)
		case domain.KindOperator:
			node.Operator, err = decodeData[domain.OperatorPayload](wn.Data)
			if err == nil {
				node.Operator.Inputs = domain.ClampInputs(node.Operator.Operator, node.Operator.Inputs)
			}
		case domain.KindAction:
			node.Action, err = decodeData[domain.ActionPayload](wn.Data)
		default:
			return nil, fmt.Errorf("unknown node type %q for node %q", wn.Type, wn.ID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode node %q: %w", wn.ID, err)
		}
		flow.Nodes = append(flow.Nodes, node)
	}
	return flow, nil
}

// decodeData resolves a wire data bag into a typed payload. Weak typing
// absorbs JSON's float64 numbers and string booleans from hand-written
// YAML.
func decodeData[T any](data map[string]any) (*T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(data); err != nil {
		return nil, err
	}
	return &out, nil
}

func toWire(flow *domain.Flow) (*wireDoc, error) {
	doc := &wireDoc{
		Title:    flow.Title,
		Sections: flow.Sections,
		Edges:    flow.Edges,
	}

	sectionIdx := 0
	for _, node := range flow.Nodes {
		var payload any
		pos := position{X: 400, Y: 100}
		switch node.Kind {
		case domain.KindSection:
			payload = node.Section
			pos = position{X: 100, Y: float64(sectionIdx)*250 + 50}
			sectionIdx++
		case domain.KindCondition:
			payload = node.Condition
		case domain.KindOperator:
			payload = node.Operator
		case domain.KindAction:
			payload = node.Action
		default:
			return nil, fmt.Errorf("unknown node kind %q for node %q", node.Kind, node.ID)
		}

		data, err := encodeData(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode node %q: %w", node.ID, err)
		}
		doc.Nodes = append(doc.Nodes, wireNode{
			ID:       node.ID,
			Type:     string(node.Kind),
			Position: pos,
			Data:     data,
		})
	}
	return doc, nil
}

// encodeData flattens a payload struct back into a wire data bag. Going
// through JSON keeps the key names identical to what decode accepts.
func encodeData(payload any) (map[string]any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
