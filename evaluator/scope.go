package evaluator

import "github.com/dellyoung/less-oxide/ast"

// orderedMap is a minimal insertion-ordered string-keyed map, standing
// in for the indexmap.IndexMap used on the scope stack. Only the
// operations the evaluator needs are implemented.
type orderedMap[V any] struct {
	keys   []string
	values map[string]V
}

func newOrderedMap[V any]() *orderedMap[V] {
	return &orderedMap[V]{values: make(map[string]V)}
}

func (m *orderedMap[V]) get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *orderedMap[V]) insert(key string, value V) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// variableScope is one frame of the variable-scope stack.
type variableScope = orderedMap[variableValue]

// mixinScope is one frame of the mixin-definition scope stack.
type mixinScope = orderedMap[*ast.MixinDefinition]
