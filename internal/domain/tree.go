package domain

// Node представляет узел размеченного упорядоченного дерева XML-документа.
// Тег хранит имя элемента в label, упорядоченный список дочерних узлов и атрибуты.
// Текстовое содержимое хранится как дочерний узел без тега, label которого
// равен самому тексту. После создания узел не изменяется.
type Node struct {
	label    string
	isTag    bool
	children []*Node
	attrs    map[string]string
}

// NewTag создает узел-тег. Атрибуты и дочерние узлы копируются,
// поэтому последующие изменения входных данных не влияют на дерево.
func NewTag(label string, attrs map[string]string, children ...*Node) *Node {
	n := &Node{
		label:    label,
		isTag:    true,
		children: make([]*Node, len(children)),
		attrs:    make(map[string]string, len(attrs)),
	}
	copy(n.children, children)
	for k, v := range attrs {
		n.attrs[k] = v
	}
	return n
}

// NewText создает текстовый узел.
func NewText(text string) *Node {
	return &Node{label: text}
}

// Label возвращает имя тега или текст для текстового узла.
func (n *Node) Label() string { return n.label }

// IsTag сообщает, является ли узел тегом.
func (n *Node) IsTag() bool { return n.isTag }

// NumChildren возвращает количество дочерних узлов.
func (n *Node) NumChildren() int { return len(n.children) }

// Child возвращает i-й дочерний узел. Выход за границы - ошибка вызывающего.
func (n *Node) Child(i int) *Node { return n.children[i] }

// Attr возвращает значение атрибута. У текстовых узлов атрибутов нет.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// Text возвращает текстовое значение тега: label первого дочернего узла
// или пустую строку, если дочерних узлов нет.
func (n *Node) Text() string {
	if len(n.children) == 0 {
		return ""
	}
	return n.children[0].label
}
