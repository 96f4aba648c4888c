package resolver

import (
	"errors"
	"testing"

	"github.com/configproxy/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphOf(nodes ...models.ConfigTypeNode) *models.ConfigTypeNodes {
	g := &models.ConfigTypeNodes{Nodes: make(map[string]models.ConfigTypeNode, len(nodes))}
	for _, n := range nodes {
		g.Nodes[n.ID] = n
	}
	return g
}

func component(familyID, icon string) models.ComponentIndex {
	return models.ComponentIndex{
		ID:         models.ComponentID{ID: familyID + "#" + icon, FamilyID: familyID},
		IconFamily: models.IconFamily{Icon: icon},
	}
}

func componentsOf(c ...models.ComponentIndex) *models.ComponentIndices {
	return &models.ComponentIndices{Components: c}
}

func jdbcGraph() *models.ConfigTypeNodes {
	return graphOf(
		models.ConfigTypeNode{ID: "jdbc", DisplayName: "JDBC", Name: "jdbc", Version: 1, Edges: []string{"datastore"}},
		models.ConfigTypeNode{ID: "datastore", ParentID: "jdbc", DisplayName: "Connection", Name: "connection", Version: 3, Edges: []string{"dataset"}},
		models.ConfigTypeNode{ID: "dataset", ParentID: "datastore", DisplayName: "Table", Name: "table", Version: 2},
	)
}

func TestRootConfigurations(t *testing.T) {
	t.Run("empty graph returns empty index", func(t *testing.T) {
		nodes, err := RootConfigurations(&models.ConfigTypeNodes{}, componentsOf())

		require.NoError(t, err)
		assert.NotNil(t, nodes.Nodes)
		assert.Empty(t, nodes.Nodes)
	})

	t.Run("nil inputs are treated as empty", func(t *testing.T) {
		nodes, err := RootConfigurations(nil, nil)

		require.NoError(t, err)
		assert.Empty(t, nodes.Nodes)
	})

	t.Run("direct child of a family is annotated", func(t *testing.T) {
		nodes, err := RootConfigurations(jdbcGraph(), componentsOf(component("jdbc", "db-input")))

		require.NoError(t, err)
		require.Len(t, nodes.Nodes, 1)

		node := nodes.Nodes["datastore"]
		assert.Equal(t, models.Node{
			ID:          "datastore",
			Type:        models.NodeTypeConfiguration,
			Label:       "Connection",
			FamilyID:    "jdbc",
			FamilyLabel: "JDBC",
			Icon:        "db-input",
			Children:    []string{"dataset"},
			Version:     3,
			Name:        "connection",
		}, node)
		assert.Nil(t, node.Detail)
	})

	t.Run("grandchild is not a root configuration", func(t *testing.T) {
		nodes, err := RootConfigurations(jdbcGraph(), componentsOf(component("jdbc", "db-input")))

		require.NoError(t, err)
		assert.NotContains(t, nodes.Nodes, "dataset")
		assert.NotContains(t, nodes.Nodes, "jdbc")
	})

	t.Run("child of family needs an incoming edge", func(t *testing.T) {
		graph := graphOf(
			models.ConfigTypeNode{ID: "F1"},
			models.ConfigTypeNode{ID: "A", ParentID: "F1", Edges: []string{"B"}},
			models.ConfigTypeNode{ID: "B", ParentID: "A"},
		)

		nodes, err := RootConfigurations(graph, componentsOf(component("F1", "ic")))

		require.NoError(t, err)
		assert.Empty(t, nodes.Nodes)
	})

	t.Run("any referring node qualifies the child", func(t *testing.T) {
		graph := graphOf(
			models.ConfigTypeNode{ID: "F1", DisplayName: "Family"},
			models.ConfigTypeNode{ID: "A", ParentID: "F1", Edges: []string{"B"}},
			models.ConfigTypeNode{ID: "B", ParentID: "A"},
			models.ConfigTypeNode{ID: "R", Edges: []string{"A"}},
		)

		nodes, err := RootConfigurations(graph, componentsOf(component("F1", "ic")))

		require.NoError(t, err)
		require.Len(t, nodes.Nodes, 1)
		assert.Equal(t, "F1", nodes.Nodes["A"].FamilyID)
		assert.Equal(t, "Family", nodes.Nodes["A"].FamilyLabel)
		assert.Equal(t, "ic", nodes.Nodes["A"].Icon)
	})

	t.Run("dangling edges are skipped", func(t *testing.T) {
		graph := jdbcGraph()
		fam := graph.Nodes["jdbc"]
		fam.Edges = append(fam.Edges, "ghost")
		graph.Nodes["jdbc"] = fam

		nodes, err := RootConfigurations(graph, componentsOf(component("jdbc", "db-input")))

		require.NoError(t, err)
		assert.Len(t, nodes.Nodes, 1)
		assert.NotContains(t, nodes.Nodes, "ghost")
	})

	t.Run("child reachable from several nodes appears once", func(t *testing.T) {
		graph := jdbcGraph()
		graph.Nodes["other"] = models.ConfigTypeNode{ID: "other", ParentID: "jdbc", Edges: []string{"datastore"}}

		nodes, err := RootConfigurations(graph, componentsOf(component("jdbc", "db-input")))

		require.NoError(t, err)
		assert.Len(t, nodes.Nodes, 1)
		assert.Contains(t, nodes.Nodes, "datastore")
	})

	t.Run("family without component aborts the pass", func(t *testing.T) {
		nodes, err := RootConfigurations(jdbcGraph(), componentsOf(component("other", "x")))

		require.Error(t, err)
		assert.Nil(t, nodes)
		assert.True(t, errors.Is(err, ErrNoComponentInFamily))

		re, ok := AsResolutionError(err)
		require.True(t, ok)
		assert.Equal(t, NoComponentInFamily, re.Kind)
		require.NotNil(t, re.Family)
		assert.Equal(t, "jdbc", re.Family.ID)
	})

	t.Run("error is stable across runs", func(t *testing.T) {
		graph := graphOf(
			models.ConfigTypeNode{ID: "fa", Edges: []string{"a1"}},
			models.ConfigTypeNode{ID: "a1", ParentID: "fa"},
			models.ConfigTypeNode{ID: "fb", Edges: []string{"b1"}},
			models.ConfigTypeNode{ID: "b1", ParentID: "fb"},
		)

		for range 20 {
			_, err := RootConfigurations(graph, componentsOf())
			re, ok := AsResolutionError(err)
			require.True(t, ok)
			assert.Equal(t, "fa", re.Family.ID)
		}
	})

	t.Run("identical inputs give identical output", func(t *testing.T) {
		graph := graphOf(
			models.ConfigTypeNode{ID: "fa", DisplayName: "A", Edges: []string{"a1", "a2"}},
			models.ConfigTypeNode{ID: "a1", ParentID: "fa", Version: 1},
			models.ConfigTypeNode{ID: "a2", ParentID: "fa", Version: 2},
			models.ConfigTypeNode{ID: "fb", DisplayName: "B", Edges: []string{"b1"}},
			models.ConfigTypeNode{ID: "b1", ParentID: "fb", Edges: []string{"a1"}},
		)
		components := componentsOf(component("fb", "b-icon"), component("fa", "a-icon"))

		first, err := RootConfigurations(graph, components)
		require.NoError(t, err)
		for range 10 {
			next, err := RootConfigurations(graph, components)
			require.NoError(t, err)
			assert.Equal(t, first, next)
		}
		assert.Len(t, first.Nodes, 3)
		assert.Equal(t, "a-icon", first.Nodes["a1"].Icon)
		assert.Equal(t, "b-icon", first.Nodes["b1"].Icon)
	})
}

func TestFamilyOf(t *testing.T) {
	t.Run("walks to the top of the chain", func(t *testing.T) {
		graph := graphOf(
			models.ConfigTypeNode{ID: "C"},
			models.ConfigTypeNode{ID: "B", ParentID: "C"},
			models.ConfigTypeNode{ID: "A", ParentID: "B"},
		)

		family, err := FamilyOf("A", graph)
		require.NoError(t, err)
		assert.Equal(t, "C", family.ID)
	})

	t.Run("family is its own family", func(t *testing.T) {
		family, err := FamilyOf("jdbc", jdbcGraph())

		require.NoError(t, err)
		assert.Equal(t, "jdbc", family.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := FamilyOf("missing", jdbcGraph())

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoFamilyForConfiguration))
		re, ok := AsResolutionError(err)
		require.True(t, ok)
		assert.Equal(t, "missing", re.ConfigurationID)
	})

	t.Run("dangling parent carries the queried id", func(t *testing.T) {
		graph := graphOf(
			models.ConfigTypeNode{ID: "B", ParentID: "gone"},
			models.ConfigTypeNode{ID: "A", ParentID: "B"},
		)

		_, err := FamilyOf("A", graph)

		re, ok := AsResolutionError(err)
		require.True(t, ok)
		assert.Equal(t, NoFamilyForConfiguration, re.Kind)
		assert.Equal(t, "A", re.ConfigurationID)
		assert.Contains(t, re.Message, "A")
	})

	t.Run("parent cycle fails fast", func(t *testing.T) {
		graph := graphOf(
			models.ConfigTypeNode{ID: "A", ParentID: "B"},
			models.ConfigTypeNode{ID: "B", ParentID: "A"},
		)

		_, err := FamilyOf("A", graph)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoFamilyForConfiguration))
		assert.Contains(t, err.Error(), "cycle")
	})

	t.Run("self parent fails fast", func(t *testing.T) {
		_, err := FamilyOf("A", graphOf(models.ConfigTypeNode{ID: "A", ParentID: "A"}))

		assert.True(t, errors.Is(err, ErrNoFamilyForConfiguration))
	})

	t.Run("nil graph", func(t *testing.T) {
		_, err := FamilyOf("A", nil)

		assert.True(t, errors.Is(err, ErrNoFamilyForConfiguration))
	})
}

func TestFindIcon(t *testing.T) {
	family := models.ConfigTypeNode{ID: "X", DisplayName: "Family X"}

	t.Run("first match wins", func(t *testing.T) {
		icon, err := FindIcon(family, componentsOf(component("Y", "i0"), component("X", "i1"), component("X", "i2")))

		require.NoError(t, err)
		assert.Equal(t, "i1", icon)
	})

	t.Run("no matching component", func(t *testing.T) {
		_, err := FindIcon(family, componentsOf(component("Y", "i0")))

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoComponentInFamily))
		assert.False(t, errors.Is(err, ErrNoFamilyForConfiguration))

		re, ok := AsResolutionError(err)
		require.True(t, ok)
		assert.Equal(t, family, *re.Family)
		assert.Contains(t, re.Error(), "NO_COMPONENT_IN_FAMILY")
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := FindIcon(family, nil)

		assert.True(t, errors.Is(err, ErrNoComponentInFamily))
	})
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "NO_FAMILY_FOR_CONFIGURATION", NoFamilyForConfiguration.String())
	assert.Equal(t, "NO_COMPONENT_IN_FAMILY", NoComponentInFamily.String())
	assert.Equal(t, "UNKNOWN", ErrorKind(0).String())
}
