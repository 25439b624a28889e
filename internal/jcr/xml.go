// Package jcr reads and writes FileVault-serialized JCR documents.
package jcr

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/codebypatrickleung/wfmigrate/internal/common"
)

// Property and element names used across workflow documents.
const (
	RootElement       = "jcr:root"
	ContentElement    = "jcr:content"
	PrimaryType       = "jcr:primaryType"
	Title             = "jcr:title"
	Description       = "jcr:description"
	ResourceType      = "sling:resourceType"
	ContentXML        = ".content.xml"
	ContentOnDisk     = "_jcr_content"
	TrueValue         = "{Boolean}true"
	FalseValue        = "{Boolean}false"
	TypeUnstructured  = "nt:unstructured"
	TypePage          = "cq:Page"
	TypeOsgiConfig    = "sling:OsgiConfig"
	TypeLauncher      = "cq:WorkflowLauncher"
	TypeWorkflowNode  = "cq:WorkflowNode"
	TypeTransition    = "cq:WorkflowTransition"
	ModelResourceType = "cq/workflow/components/pages/model"
)

// Namespaces maps the prefixes used in workflow documents to their URIs.
var Namespaces = map[string]string{
	"sling": "http://sling.apache.org/jcr/sling/1.0",
	"jcr":   "http://www.jcp.org/jcr/1.0",
	"cq":    "http://www.day.com/jcr/cq/1.0",
	"nt":    "http://www.jcp.org/jcr/nt/1.0",
}

// Load parses the XML document at path.
func Load(path string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("document %s has no root element", path)
	}
	return doc, nil
}

// Save indents doc and writes it to path, creating parent directories.
func Save(doc *etree.Document, path string) error {
	if err := common.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	doc.Indent(4)
	if err := doc.WriteToFile(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// NewDocument creates a document with a jcr:root element of the given primary type
// declaring the named namespace prefixes.
func NewDocument(primaryType string, prefixes ...string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(RootElement)
	for _, p := range prefixes {
		if uri, ok := Namespaces[p]; ok {
			root.CreateAttr("xmlns:"+p, uri)
		}
	}
	root.CreateAttr(PrimaryType, primaryType)
	return doc, root
}

// AddContentNode appends an nt:unstructured jcr:content child to root.
func AddContentNode(root *etree.Element) *etree.Element {
	content := root.CreateElement(ContentElement)
	content.CreateAttr(PrimaryType, TypeUnstructured)
	return content
}

// FindElement returns the first element named fullTag in a depth-first walk starting at el, or nil.
func FindElement(el *etree.Element, fullTag string) *etree.Element {
	if el == nil {
		return nil
	}
	if el.FullTag() == fullTag {
		return el
	}
	for _, child := range el.ChildElements() {
		if found := FindElement(child, fullTag); found != nil {
			return found
		}
	}
	return nil
}

// FindElements returns every element named fullTag below el in document order.
func FindElements(el *etree.Element, fullTag string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if child.FullTag() == fullTag {
			out = append(out, child)
		}
		out = append(out, FindElements(child, fullTag)...)
	}
	return out
}

// Attr returns the value of the attribute named key, or an empty string.
func Attr(el *etree.Element, key string) string {
	return el.SelectAttrValue(key, "")
}

// HasAttr reports whether el carries the attribute named key.
func HasAttr(el *etree.Element, key string) bool {
	return el.SelectAttr(key) != nil
}

// DiskPath maps a JCR path onto the FileVault file system layout below jcrRoot.
func DiskPath(jcrRoot, jcrPath string) string {
	segments := strings.Split(strings.TrimPrefix(jcrPath, "/"), "/")
	for i, s := range segments {
		if prefix, name, ok := strings.Cut(s, ":"); ok {
			segments[i] = "_" + prefix + "_" + name
		}
	}
	return filepath.Join(append([]string{jcrRoot}, segments...)...)
}
