package render

import "rssreader/internal/domain"

// Find ищет среди прямых потомков node элемент с меткой tag и возвращает его индекс.
// Просматриваются все потомки, поэтому при повторах побеждает последнее совпадение.
// found равен false, если совпадений нет. node не изменяется.
func Find(node *domain.Node, tag string) (index int, found bool) {
	index = -1
	for i := 0; i < node.NumChildren(); i++ {
		if node.Child(i).Label() == tag {
			index = i
		}
	}
	return index, index >= 0
}

// child возвращает найденный дочерний элемент или nil.
func child(node *domain.Node, tag string) *domain.Node {
	if i, ok := Find(node, tag); ok {
		return node.Child(i)
	}
	return nil
}

// requireChild работает как child, но отсутствие элемента считает нарушением структуры.
func requireChild(node *domain.Node, tag string) (*domain.Node, error) {
	c := child(node, tag)
	if c == nil {
		return nil, &StructuralError{Parent: node.Label(), Element: tag}
	}
	return c, nil
}
