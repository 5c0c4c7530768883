// Package nodekit has the eager consumers of materialised groupkit trees.
// Every function expects a tree returned by groupkit.Collect, and rejects trees with unmaterialised levels.
package nodekit

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/mitchellh/mapstructure"
	"github.com/theory/jsonpath"
	"go.llib.dev/frameless/pkg/errorkit"

	"go.llib.dev/groupkit/pkg/groupkit"
)

const (
	ErrNotMaterialized errorkit.Error = "nodekit: tree has an unmaterialised level"
	ErrInvalidPath     errorkit.Error = "nodekit: invalid JSONPath expression"
)

// TagName is the struct tag Decode uses to map Node fields to struct fields.
const TagName = "node"

// EncodeYAML writes the tree as a YAML sequence.
func EncodeYAML(w io.Writer, nodes []groupkit.Node) error {
	if err := checkMaterialized(nodes); err != nil {
		return err
	}
	bs, err := yaml.Marshal(nodes)
	if err != nil {
		return err
	}
	_, err = w.Write(bs)
	return err
}

// EncodeJSON writes the tree as a JSON array.
func EncodeJSON(w io.Writer, nodes []groupkit.Node) error {
	if err := checkMaterialized(nodes); err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(nodes)
}

// Decode maps the tree onto ptr, which is usually a pointer to a slice of structs.
// Struct fields are matched by the `node` tag, or by their name when untagged.
func Decode(nodes []groupkit.Node, ptr any) error {
	if err := checkMaterialized(nodes); err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: TagName,
		Result:  ptr,
	})
	if err != nil {
		return err
	}
	return dec.Decode(nodes)
}

// Select evaluates a JSONPath expression on the tree.
// The tree is normalised through JSON first, so numbers are returned as float64.
func Select(nodes []groupkit.Node, expr string) ([]any, error) {
	path, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, ErrInvalidPath.Wrap(err)
	}
	if err := checkMaterialized(nodes); err != nil {
		return nil, err
	}
	bs, err := json.Marshal(nodes)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(bs, &doc); err != nil {
		return nil, err
	}
	return []any(path.Select(doc)), nil
}

func checkMaterialized(nodes []groupkit.Node) error {
	for i, node := range nodes {
		for key, value := range node {
			switch v := value.(type) {
			case groupkit.Iterator:
				return ErrNotMaterialized.F("node #%d field %q", i, key)
			case []groupkit.Node:
				if err := checkMaterialized(v); err != nil {
					return fmt.Errorf("%s: %w", key, err)
				}
			}
		}
	}
	return nil
}
