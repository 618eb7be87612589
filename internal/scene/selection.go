package scene

// SelectionProvider returns the ordered root nodes an operation applies to.
// The result may be empty.
type SelectionProvider interface {
	Selection() []Node
}

// StaticSelection is a fixed selection.
type StaticSelection []Node

// Selection implements SelectionProvider.
func (s StaticSelection) Selection() []Node {
	return s
}
