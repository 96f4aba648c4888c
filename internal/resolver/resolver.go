// Package resolver flattens the configuration type graph into the root
// configuration index and answers family and icon queries over it.
//
// All functions are pure: they read the caller's snapshot and build fresh
// results, so concurrent calls need no coordination.
package resolver

import (
	"maps"
	"slices"

	"github.com/configproxy/core/internal/models"
)

// RootConfigurations returns every node that is the target of some edge and
// whose parent is a family, annotated with that family and its icon.
//
// A family without any component aborts the whole pass; no partial index is
// returned. Dangling edges are skipped.
func RootConfigurations(graph *models.ConfigTypeNodes, components *models.ComponentIndices) (*models.Nodes, error) {
	families := make(map[string]models.ConfigTypeNode)
	for _, node := range nodesOf(graph) {
		if node.IsFamily() {
			families[node.ID] = node
		}
	}

	icons := newIconMemo(components)
	result := &models.Nodes{Nodes: make(map[string]models.Node)}

	// Sorted traversal keeps the reported error stable when several
	// families are missing components.
	for _, id := range slices.Sorted(maps.Keys(nodesOf(graph))) {
		for _, edge := range graph.Nodes[id].Edges {
			candidate, ok := graph.Lookup(edge)
			if !ok || candidate.IsFamily() {
				continue
			}
			family, ok := families[candidate.ParentID]
			if !ok {
				continue
			}
			if _, done := result.Nodes[candidate.ID]; done {
				continue
			}

			icon, err := icons.find(family)
			if err != nil {
				return nil, err
			}
			result.Nodes[candidate.ID] = models.Node{
				ID:          candidate.ID,
				Type:        models.NodeTypeConfiguration,
				Label:       candidate.DisplayName,
				FamilyID:    family.ID,
				FamilyLabel: family.DisplayName,
				Icon:        icon,
				Children:    candidate.Edges,
				Version:     candidate.Version,
				Name:        candidate.Name,
			}
		}
	}

	return result, nil
}

// FamilyOf walks parent references from id up to the node without a parent.
// An unknown id, a dangling parent or a parent cycle all fail with
// NoFamilyForConfiguration carrying the queried id.
func FamilyOf(id string, graph *models.ConfigTypeNodes) (models.ConfigTypeNode, error) {
	visited := make(map[string]struct{})
	current := id
	node, ok := graph.Lookup(current)
	for ok && !node.IsFamily() {
		visited[current] = struct{}{}
		current = node.ParentID
		if _, seen := visited[current]; seen {
			return models.ConfigTypeNode{}, noFamilyError(id, "parent cycle through "+current)
		}
		node, ok = graph.Lookup(current)
	}
	if !ok {
		return models.ConfigTypeNode{}, noFamilyError(id, "")
	}
	return node, nil
}

// FindIcon returns the icon of the first component, in index order, that
// belongs to family.
func FindIcon(family models.ConfigTypeNode, components *models.ComponentIndices) (string, error) {
	if components != nil {
		for _, component := range components.Components {
			if component.ID.FamilyID == family.ID {
				return component.IconFamily.Icon, nil
			}
		}
	}
	return "", noComponentError(family)
}

// iconMemo caches FindIcon per family for the duration of one pass.
type iconMemo struct {
	components *models.ComponentIndices
	icons      map[string]string
}

func newIconMemo(components *models.ComponentIndices) *iconMemo {
	return &iconMemo{components: components, icons: make(map[string]string)}
}

func (m *iconMemo) find(family models.ConfigTypeNode) (string, error) {
	if icon, ok := m.icons[family.ID]; ok {
		return icon, nil
	}
	icon, err := FindIcon(family, m.components)
	if err != nil {
		return "", err
	}
	m.icons[family.ID] = icon
	return icon, nil
}

func nodesOf(graph *models.ConfigTypeNodes) map[string]models.ConfigTypeNode {
	if graph == nil {
		return nil
	}
	return graph.Nodes
}
