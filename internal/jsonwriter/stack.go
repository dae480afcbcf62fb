package jsonwriter

// Kind identifies the type of an open container.
type Kind uint8

const (
	Object Kind = iota + 1
	Array
)

func (k Kind) String() string {
	switch k {
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return "unknown"
	}
}

func (k Kind) closer() byte {
	if k == Array {
		return ']'
	}
	return '}'
}

const defaultSeparator = ","

type container struct {
	kind      Kind
	hasMember bool
	separator string
}

// containerStack tracks open containers with the innermost on top.
type containerStack struct {
	items []container
}

func newContainerStack(capacity int) containerStack {
	return containerStack{items: make([]container, 0, capacity)}
}

func (s *containerStack) push(kind Kind) {
	s.items = append(s.items, container{kind: kind, separator: defaultSeparator})
}

func (s *containerStack) pop() (container, bool) {
	if len(s.items) == 0 {
		return container{}, false
	}

	index := len(s.items) - 1
	item := s.items[index]
	s.items = s.items[:index]
	return item, true
}

// top allows modifying the innermost container in place.
func (s *containerStack) top() *container {
	if len(s.items) == 0 {
		return nil
	}

	return &s.items[len(s.items)-1]
}

func (s *containerStack) isEmpty() bool {
	return len(s.items) == 0
}

func (s *containerStack) size() int {
	return len(s.items)
}
