// Package models defines the core data structures exchanged with the component
// server and returned to clients.
package models

// ConfigTypeNode is one configuration type definition as served by the
// component server. Relations to other nodes are carried as ids only.
type ConfigTypeNode struct {
	ID                string               `json:"id" yaml:"id" validate:"required"`
	ParentID          string               `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Name              string               `json:"name" yaml:"name"`
	DisplayName       string               `json:"displayName" yaml:"displayName"`
	Version           int                  `json:"version" yaml:"version"`
	ConfigurationType string               `json:"configurationType,omitempty" yaml:"configurationType,omitempty"`
	Edges             []string             `json:"edges,omitempty" yaml:"edges,omitempty"`
	Properties        []PropertyDefinition `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// PropertyDefinition is passed through untouched.
type PropertyDefinition struct {
	Path        string            `json:"path" yaml:"path"`
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	DisplayName string            `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Type        string            `json:"type,omitempty" yaml:"type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// IsFamily reports whether the node has no parent. An explicit empty
// parentId counts as no parent, the same as an omitted one.
func (n ConfigTypeNode) IsFamily() bool {
	return n.ParentID == ""
}

// ConfigTypeNodes is the configuration type graph, keyed by node id.
type ConfigTypeNodes struct {
	Nodes map[string]ConfigTypeNode `json:"nodes" yaml:"nodes" validate:"dive"`
}

// Lookup resolves an id against the graph. Dangling ids are reported with
// ok == false, never with a panic.
func (g *ConfigTypeNodes) Lookup(id string) (ConfigTypeNode, bool) {
	if g == nil || g.Nodes == nil {
		return ConfigTypeNode{}, false
	}
	n, ok := g.Nodes[id]
	return n, ok
}

// Len returns the number of nodes, zero for a nil graph.
func (g *ConfigTypeNodes) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Nodes)
}
