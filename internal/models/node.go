package models

type NodeType string

const (
	NodeTypeConfiguration NodeType = "CONFIGURATION"
)

// Node is the client facing view of a root configuration, annotated with
// the family it belongs to.
type Node struct {
	ID          string   `json:"id" yaml:"id"`
	Type        NodeType `json:"type" yaml:"type"`
	Label       string   `json:"label" yaml:"label"`
	FamilyID    string   `json:"familyId" yaml:"familyId"`
	FamilyLabel string   `json:"familyLabel" yaml:"familyLabel"`
	Icon        string   `json:"icon" yaml:"icon"`
	Children    []string `json:"children,omitempty" yaml:"children,omitempty"`
	Version     int      `json:"version" yaml:"version"`
	Name        string   `json:"name" yaml:"name"`
	// Detail is reserved and never populated by the resolver.
	Detail any `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Nodes is the root configuration index, keyed by Node.ID.
type Nodes struct {
	Nodes map[string]Node `json:"nodes" yaml:"nodes"`
}

// Snapshot bundles both upstream inputs so they can be resolved offline.
type Snapshot struct {
	Configurations ConfigTypeNodes  `json:"configurations" yaml:"configurations"`
	Components     ComponentIndices `json:"components" yaml:"components"`
}
