package scene

import "fmt"

// State is the ordered set of shapes on stage. Later shapes draw on top.
type State struct {
	shapes []*Shape
}

// NewState returns an empty stage.
func NewState() *State { return &State{} }

// Add places a copy of s on top. Every ID in s's subtree must be new.
func (st *State) Add(s *Shape) error {
	var dup string
	s.walk(func(n *Shape) {
		if dup == "" && st.Find(n.ID) != nil {
			dup = n.ID
		}
	})
	if dup != "" {
		return fmt.Errorf("duplicate shape id %q", dup)
	}
	st.shapes = append(st.shapes, s.Clone())
	return nil
}

// Find returns the shape with id at any depth, or nil.
func (st *State) Find(id string) *Shape {
	list, i := locate(&st.shapes, id)
	if list == nil {
		return nil
	}
	return (*list)[i]
}

// Remove takes the shape with id off the stage.
func (st *State) Remove(id string) error {
	list, i := locate(&st.shapes, id)
	if list == nil {
		return fmt.Errorf("unknown shape %q", id)
	}
	*list = append((*list)[:i], (*list)[i+1:]...)
	return nil
}

// Replace swaps the shape with id for a copy of s in the same draw position.
func (st *State) Replace(id string, s *Shape) error {
	list, i := locate(&st.shapes, id)
	if list == nil {
		return fmt.Errorf("unknown shape %q", id)
	}
	old := (*list)[i]
	(*list)[i] = nil
	var dup string
	s.walk(func(n *Shape) {
		if dup == "" && st.Find(n.ID) != nil {
			dup = n.ID
		}
	})
	if dup != "" {
		(*list)[i] = old
		return fmt.Errorf("duplicate shape id %q", dup)
	}
	(*list)[i] = s.Clone()
	return nil
}

// Len is the number of top-level shapes.
func (st *State) Len() int { return len(st.shapes) }

// Snapshot deep-copies the visible shapes in draw order.
func (st *State) Snapshot() []*Shape {
	out := make([]*Shape, 0, len(st.shapes))
	for _, s := range st.shapes {
		if s.Opacity > 0 {
			out = append(out, s.Clone())
		}
	}
	return out
}

func locate(list *[]*Shape, id string) (*[]*Shape, int) {
	for i, s := range *list {
		if s == nil {
			continue
		}
		if s.ID == id {
			return list, i
		}
		if len(s.Children) > 0 {
			if l, j := locate(&s.Children, id); l != nil {
				return l, j
			}
		}
	}
	return nil, -1
}
