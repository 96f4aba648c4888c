// Package parser decodes and validates the payloads served by the component
// server, and the snapshot files that bundle them for offline use.
package parser

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/configproxy/core/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var validate = validator.New()

// FormatFromPath picks the decoding format from a file extension; anything
// that is not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func ParseConfigTypes(data []byte) (*models.ConfigTypeNodes, error) {
	var graph models.ConfigTypeNodes
	if err := decode(data, FormatJSON, &graph, "configuration types"); err != nil {
		return nil, err
	}
	if err := checkGraph(&graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

func ParseComponentIndex(data []byte) (*models.ComponentIndices, error) {
	var index models.ComponentIndices
	if err := decode(data, FormatJSON, &index, "component index"); err != nil {
		return nil, err
	}
	if err := validate.Struct(&index); err != nil {
		return nil, errors.Wrap(err, "invalid component index")
	}
	return &index, nil
}

// ParseSnapshot decodes a document holding both the configuration types and
// the component index.
func ParseSnapshot(data []byte, format Format) (*models.Snapshot, error) {
	var snapshot models.Snapshot
	if err := decode(data, format, &snapshot, "snapshot"); err != nil {
		return nil, err
	}
	if err := checkGraph(&snapshot.Configurations); err != nil {
		return nil, err
	}
	if err := validate.Struct(&snapshot.Components); err != nil {
		return nil, errors.Wrap(err, "invalid component index")
	}
	return &snapshot, nil
}

func decode(data []byte, format Format, out any, what string) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.Errorf("empty %s data", what)
	}

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, out)
	case FormatJSON, "":
		err = json.Unmarshal(data, out)
	default:
		return errors.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to unmarshal %s", what)
	}
	return nil
}

// checkGraph validates every node and makes sure each map key is the id of
// the node stored under it.
func checkGraph(graph *models.ConfigTypeNodes) error {
	if graph.Nodes == nil {
		graph.Nodes = map[string]models.ConfigTypeNode{}
	}
	if err := validate.Struct(graph); err != nil {
		return errors.Wrap(err, "invalid configuration types")
	}
	for key, node := range graph.Nodes {
		if key != node.ID {
			return errors.Errorf("invalid configuration types: node %q is stored under key %q", node.ID, key)
		}
	}
	return nil
}
