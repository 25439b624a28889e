// Package graph mutates the two XML encodings of a workflow model: the design-time
// configuration flow and the runtime node/transition chain.
package graph

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/codebypatrickleung/wfmigrate/internal/common"
	"github.com/codebypatrickleung/wfmigrate/internal/jcr"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
)

// Element and attribute names of workflow model documents.
const (
	FlowElement        = "flow"
	NodesElement       = "nodes"
	TransitionsElement = "transitions"
	MetadataElement    = "metaData"
	NodePrefix         = "node"
	NodeSeparator      = "_x0023_"

	ProcessProp         = "PROCESS"
	ExternalProcessProp = "EXTERNAL_PROCESS"
	AutoAdvanceProp     = "PROCESS_AUTO_ADVANCE"
	TypeProp            = "type"
	TitleProp           = "title"
	DescriptionProp     = "description"
	FromProp            = "from"
	ToProp              = "to"
	RuleProp            = "rule"

	NodeTypeProcess = "PROCESS"
	NodeTypeEnd     = "END"
)

// ConfigGraph is the design-time encoding of a model: a flow element whose children are steps.
// Child element names are arbitrary, so the flow carries no ordering invariant.
type ConfigGraph struct {
	doc  *etree.Document
	flow *etree.Element
	path string
}

// LoadConfig reads the configuration document at path.
func LoadConfig(path string) (*ConfigGraph, error) {
	doc, err := jcr.Load(path)
	if err != nil {
		return nil, model.NewCustomerDataError(path, "unable to parse workflow model XML", err)
	}
	return NewConfigGraph(doc, path)
}

// NewConfigGraph wraps a parsed configuration document. The document must contain exactly one flow element.
func NewConfigGraph(doc *etree.Document, path string) (*ConfigGraph, error) {
	flows := jcr.FindElements(&doc.Element, FlowElement)
	if len(flows) != 1 {
		return nil, model.NewCustomerDataError(path, fmt.Sprintf("expected exactly one %s element, found %d", FlowElement, len(flows)), nil)
	}
	return &ConfigGraph{doc: doc, flow: flows[0], path: path}, nil
}

// Steps returns the process steps of the flow in document order, plus the names of
// child elements that were skipped because they reference no process (splits, gotos).
func (g *ConfigGraph) Steps() ([]model.WorkflowStep, []string) {
	var steps []model.WorkflowStep
	var skipped []string
	for _, el := range g.flow.ChildElements() {
		step := parseStep(el)
		if step.ProcessID == "" {
			skipped = append(skipped, el.FullTag())
			continue
		}
		steps = append(steps, step)
	}
	return steps, skipped
}

// RemoveStep detaches every step running processID and returns how many were removed.
func (g *ConfigGraph) RemoveStep(processID string) int {
	if processID == "" {
		return 0
	}
	removed := 0
	for _, el := range g.flow.ChildElements() {
		if processOf(el) == processID {
			g.flow.RemoveChild(el)
			removed++
		}
	}
	return removed
}

// AddStep appends a step element to the flow.
func (g *ConfigGraph) AddStep(step model.WorkflowStep) {
	name := step.NodeName
	if name == "" {
		name = common.JcrSafeNodeName(shortName(step.ProcessID))
	}
	el := g.flow.CreateElement(name)
	el.CreateAttr(jcr.Description, step.Description)
	el.CreateAttr(jcr.PrimaryType, jcr.TypeUnstructured)
	el.CreateAttr(jcr.Title, step.Title)
	el.CreateAttr(jcr.ResourceType, step.ResourceType)
	newMetadata(el, step)
}

// Save writes the document to the path it was loaded from.
func (g *ConfigGraph) Save() error {
	return jcr.Save(g.doc, g.path)
}

func parseStep(el *etree.Element) model.WorkflowStep {
	step := model.WorkflowStep{
		Title:        jcr.Attr(el, jcr.Title),
		Description:  jcr.Attr(el, jcr.Description),
		ResourceType: jcr.Attr(el, jcr.ResourceType),
	}
	md := metadataOf(el)
	if md == nil {
		return step
	}
	step.NodeName = el.FullTag()
	step.ProcessID = processAttr(md)
	for _, a := range md.Attr {
		step.Metadata.Set(a.FullKey(), a.Value)
	}
	return step
}

// metadataOf returns the first metaData child of a step or node element.
func metadataOf(el *etree.Element) *etree.Element {
	for _, child := range el.ChildElements() {
		if strings.EqualFold(child.FullTag(), MetadataElement) {
			return child
		}
	}
	return nil
}

func processAttr(md *etree.Element) string {
	if v := md.SelectAttr(ProcessProp); v != nil {
		return v.Value
	}
	if v := md.SelectAttr(ExternalProcessProp); v != nil {
		return v.Value
	}
	return ""
}

// processOf returns the process referenced by a step or node element.
func processOf(el *etree.Element) string {
	md := metadataOf(el)
	if md == nil {
		return ""
	}
	return processAttr(md)
}

func newMetadata(parent *etree.Element, step model.WorkflowStep) *etree.Element {
	md := parent.CreateElement(MetadataElement)
	md.CreateAttr(jcr.PrimaryType, jcr.TypeUnstructured)
	md.CreateAttr(ProcessProp, step.ProcessID)
	md.CreateAttr(AutoAdvanceProp, "true")
	for _, k := range step.Metadata.Keys() {
		if md.SelectAttr(k) == nil {
			md.CreateAttr(k, step.Metadata.Value(k))
		}
	}
	return md
}

func shortName(processID string) string {
	if i := strings.LastIndex(processID, "."); i >= 0 {
		return processID[i+1:]
	}
	return processID
}
