package render

import (
	"sort"

	"folio/pkg/models"
)

// MaxSectionDepth bounds section resolution; deeper trees are treated as cyclic.
const MaxSectionDepth = 16

// NodeID indexes a node of a Tree.
type NodeID int

// Node is a section placed in the arena, with its identity injected.
type Node struct {
	Section  models.Section
	ParentID string
	DOMID    string
	Children []NodeID
}

// Tree stores every configured section in a flat table. Children reference their
// nodes by index; `ref` sections are resolved against the top-level ids.
type Tree struct {
	nodes []Node
	roots []NodeID
	byID  map[string]NodeID
}

func BuildTree(sections []models.Section) *Tree {
	t := &Tree{byID: make(map[string]NodeID)}
	for _, s := range sections {
		id := t.add(s, "", s.ID)
		t.roots = append(t.roots, id)
		if _, dup := t.byID[s.ID]; !dup {
			t.byID[s.ID] = id
		}
	}
	return t
}

func (t *Tree) add(s models.Section, parentID, domID string) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{Section: s, ParentID: parentID, DOMID: domID})
	for _, child := range OrderSubsections(s.ID, domID, s.Subsections) {
		cid := t.add(child.Section, child.ParentID, child.DOMID)
		t.nodes[id].Children = append(t.nodes[id].Children, cid)
	}
	return id
}

func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

func (t *Tree) Roots() []NodeID {
	return t.roots
}

// Root finds a top-level section by id.
func (t *Tree) Root(id string) (NodeID, bool) {
	n, ok := t.byID[id]
	return n, ok
}

// RootByPath finds a top-level section by its route path.
func (t *Tree) RootByPath(path string) (NodeID, bool) {
	for _, id := range t.roots {
		if t.nodes[id].Section.RoutePath() == path && path != "" {
			return id, true
		}
	}
	return 0, false
}

// ChildSection is an ordered subsection with its injected identity.
type ChildSection struct {
	Section  models.Section
	ParentID string
	DOMID    string
}

// OrderSubsections copies each subsection, sets its id (explicit id or map key) and
// parent id, and sorts explicitly ordered children ascending ahead of unordered
// ones. Ties keep declaration order.
func OrderSubsections(parentID, parentDOMID string, subs models.Subsections) []ChildSection {
	out := make([]ChildSection, 0, len(subs))
	for _, sub := range subs {
		s := sub.Section
		if s.ID == "" {
			s.ID = sub.Key
		}
		dom := s.ID
		if parentDOMID != "" {
			dom = parentDOMID + "-" + s.ID
		}
		out = append(out, ChildSection{Section: s, ParentID: parentID, DOMID: dom})
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := out[i].Section.Order, out[j].Section.Order
		switch {
		case oi != nil && oj != nil:
			return *oi < *oj
		case oi != nil:
			return true
		default:
			return false
		}
	})
	return out
}

// State is the outcome of resolving a section node.
type State int

const (
	StateSubsections State = iota + 1
	StateEmpty
	StateMissingTemplate
	StateTemplate
)

func (s State) String() string {
	switch s {
	case StateSubsections:
		return "subsections"
	case StateEmpty:
		return "empty"
	case StateMissingTemplate:
		return "missing-template"
	case StateTemplate:
		return "template"
	}
	return "unknown"
}

// Resolution is the resolved form of one section node.
type Resolution struct {
	State    State
	Template Template
	Content  any
	Children []NodeID
}

// Resolve picks the state of a section, by decreasing priority: subsections, no
// template, unregistered template, template.
func Resolve(n *Node) Resolution {
	s := n.Section
	switch {
	case len(n.Children) > 0:
		return Resolution{State: StateSubsections, Children: n.Children}
	case s.Template == "":
		return Resolution{State: StateEmpty}
	}
	t, ok := Lookup(s.Template)
	if !ok {
		return Resolution{State: StateMissingTemplate}
	}
	return Resolution{State: StateTemplate, Template: t, Content: NormalizeContent(s.Content)}
}

// NormalizeContent wraps bare strings as {text: content}.
func NormalizeContent(content any) any {
	if s, ok := content.(string); ok {
		return map[string]any{"text": s}
	}
	return content
}
