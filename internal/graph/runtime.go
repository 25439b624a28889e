package graph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/codebypatrickleung/wfmigrate/internal/jcr"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// RuntimeGraph is the runtime encoding of a model: a linear chain of nodes node0..node(n-1)
// ending in an END node, and transitions where transitions[i] links node i to node i+1.
// Nodes and transitions are held as ordered slices; names are rewritten from slice
// position after every structural change.
type RuntimeGraph struct {
	doc           *etree.Document
	path          string
	nodesEl       *etree.Element
	transitionsEl *etree.Element
	nodes         []*etree.Element
	transitions   []*etree.Element
}

// LoadRuntime reads the runtime document at path.
func LoadRuntime(path string) (*RuntimeGraph, error) {
	doc, err := jcr.Load(path)
	if err != nil {
		return nil, model.NewCustomerDataError(path, "unable to parse workflow runtime XML", err)
	}
	return NewRuntimeGraph(doc, path)
}

// NewRuntimeGraph wraps a parsed runtime document. Missing nodes or transitions containers
// are a StructuralInvariantError.
func NewRuntimeGraph(doc *etree.Document, path string) (*RuntimeGraph, error) {
	g := &RuntimeGraph{
		doc:           doc,
		path:          path,
		nodesEl:       jcr.FindElement(doc.Root(), NodesElement),
		transitionsEl: jcr.FindElement(doc.Root(), TransitionsElement),
	}
	if g.nodesEl == nil || g.transitionsEl == nil {
		return nil, &model.StructuralInvariantError{Path: path, Msg: "nodes or transitions container is missing"}
	}
	g.nodes = sortByIndex(g.nodesEl.ChildElements())
	g.transitions = g.transitionsEl.ChildElements()
	return g, nil
}

// Nodes returns the number of nodes.
func (g *RuntimeGraph) Nodes() int { return len(g.nodes) }

// Transitions returns the number of transitions.
func (g *RuntimeGraph) Transitions() int { return len(g.transitions) }

// NodeNames returns the node element names in chain order.
func (g *RuntimeGraph) NodeNames() []string {
	names := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		names[i] = n.FullTag()
	}
	return names
}

// NodeType returns the type attribute of node i.
func (g *RuntimeGraph) NodeType(i int) string {
	return jcr.Attr(g.nodes[i], TypeProp)
}

// Transition returns the from and to node names of transition i.
func (g *RuntimeGraph) Transition(i int) (from, to string) {
	t := g.transitions[i]
	return jcr.Attr(t, FromProp), jcr.Attr(t, ToProp)
}

// RemoveStep detaches every node running processID, renumbers the remaining nodes and
// drops one transition from the tail of the chain per removed node. It returns the
// number of nodes removed.
//
// The tail transition is dropped rather than rewiring the one that pointed at the removed
// node: in a linear chain every transition i still joins node i and node i+1 once the
// nodes are renumbered.
func (g *RuntimeGraph) RemoveStep(processID string) int {
	if processID == "" {
		return 0
	}
	kept := g.nodes[:0:0]
	removed := 0
	for _, n := range g.nodes {
		if processOf(n) == processID {
			g.nodesEl.RemoveChild(n)
			removed++
			continue
		}
		kept = append(kept, n)
	}
	if removed == 0 {
		return 0
	}
	g.nodes = kept
	g.renumber()
	for i := 0; i < removed && len(g.transitions) > 0; i++ {
		last := g.transitions[len(g.transitions)-1]
		g.transitionsEl.RemoveChild(last)
		g.transitions = g.transitions[:len(g.transitions)-1]
	}
	return removed
}

// AddStep inserts a process node immediately before the END node and appends a
// transition from the new node to END.
func (g *RuntimeGraph) AddStep(step model.WorkflowStep) error {
	if len(g.nodes) == 0 || g.NodeType(len(g.nodes)-1) != NodeTypeEnd {
		return g.invariantError("last node is not of type " + NodeTypeEnd)
	}
	end := g.nodes[len(g.nodes)-1]

	n := etree.NewElement(NodePrefix)
	n.CreateAttr(jcr.PrimaryType, jcr.TypeWorkflowNode)
	n.CreateAttr(DescriptionProp, step.Description)
	n.CreateAttr(TitleProp, step.Title)
	n.CreateAttr(TypeProp, NodeTypeProcess)
	newMetadata(n, step)
	g.nodesEl.InsertChildAt(end.Index(), n)

	g.nodes = append(g.nodes[:len(g.nodes)-1], n, end)
	g.renumber()

	from, to := g.nodeName(len(g.nodes)-2), g.nodeName(len(g.nodes)-1)
	t := g.transitionsEl.CreateElement(from + NodeSeparator + to)
	t.CreateAttr(jcr.PrimaryType, jcr.TypeTransition)
	t.CreateAttr(FromProp, from)
	t.CreateAttr(RuleProp, "")
	t.CreateAttr(ToProp, to)
	md := t.CreateElement(MetadataElement)
	md.CreateAttr(jcr.PrimaryType, jcr.TypeUnstructured)
	g.transitions = append(g.transitions, t)

	return g.Validate()
}

// Validate checks the chain invariant: one more node than transitions, contiguous
// node names and an END node last.
func (g *RuntimeGraph) Validate() error {
	if len(g.nodes) != len(g.transitions)+1 {
		return g.invariantError("node count must exceed transition count by one")
	}
	if g.NodeType(len(g.nodes)-1) != NodeTypeEnd {
		return g.invariantError("last node is not of type " + NodeTypeEnd)
	}
	for i, n := range g.nodes {
		if n.FullTag() != g.nodeName(i) {
			return g.invariantError(fmt.Sprintf("node %s is out of sequence", n.FullTag()))
		}
	}
	return nil
}

// Save writes the document to the path it was loaded from.
func (g *RuntimeGraph) Save() error {
	return jcr.Save(g.doc, g.path)
}

func (g *RuntimeGraph) renumber() {
	for i, n := range g.nodes {
		n.Space, n.Tag = "", g.nodeName(i)
	}
}

func (g *RuntimeGraph) nodeName(i int) string {
	return NodePrefix + strconv.Itoa(i)
}

func (g *RuntimeGraph) invariantError(msg string) error {
	return &model.StructuralInvariantError{
		Path:        g.path,
		Nodes:       len(g.nodes),
		Transitions: len(g.transitions),
		Msg:         msg,
	}
}

// sortByIndex orders node elements by the index in their name. Names without an index keep
// their relative document order after the indexed ones.
func sortByIndex(nodes []*etree.Element) []*etree.Element {
	index := func(n *etree.Element) int {
		i, err := strconv.Atoi(strings.TrimPrefix(n.FullTag(), NodePrefix))
		if err != nil || !strings.HasPrefix(n.FullTag(), NodePrefix) {
			return int(^uint(0) >> 1)
		}
		return i
	}
	sort.SliceStable(nodes, func(a, b int) bool { return index(nodes[a]) < index(nodes[b]) })
	return nodes
}
