package graph

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const namespaces = `xmlns:sling="http://sling.apache.org/jcr/sling/1.0" xmlns:cq="http://www.day.com/jcr/cq/1.0" ` +
	`xmlns:jcr="http://www.jcp.org/jcr/1.0" xmlns:nt="http://www.jcp.org/jcr/nt/1.0"`

// configXML renders a design-time model page whose flow runs processIDs in order.
// An empty process ID renders an OR split without a metaData PROCESS value.
func configXML(title string, processIDs ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<jcr:root %s jcr:primaryType="cq:Page">
    <jcr:content cq:template="/libs/cq/workflow/templates/model" jcr:primaryType="cq:PageContent" jcr:title="%s" sling:resourceType="cq/workflow/components/pages/model">
        <flow jcr:primaryType="nt:unstructured" sling:resourceType="foundation/components/parsys">
`, namespaces, title)
	for i, id := range processIDs {
		if id == "" {
			fmt.Fprintf(&b, `            <or_%d jcr:primaryType="nt:unstructured" sling:resourceType="cq/workflow/components/model/or"/>
`, i)
			continue
		}
		fmt.Fprintf(&b, `            <process_%d jcr:primaryType="nt:unstructured" jcr:title="Step %d" sling:resourceType="cq/workflow/components/model/process">
                <metaData jcr:primaryType="nt:unstructured" PROCESS="%s" PROCESS_AUTO_ADVANCE="true"/>
            </process_%d>
`, i, i, id, i)
	}
	b.WriteString(`        </flow>
    </jcr:content>
</jcr:root>
`)
	return b.String()
}

// runtimeXML renders a runtime model: START, one PROCESS node per processID, END.
func runtimeXML(title string, processIDs ...string) string {
	types := []string{"START"}
	ids := []string{""}
	for _, id := range processIDs {
		types = append(types, NodeTypeProcess)
		ids = append(ids, id)
	}
	types = append(types, NodeTypeEnd)
	ids = append(ids, "")
	return chainXML(title, types, ids, len(types)-1)
}

// chainXML renders nodes of the given types and the first transitions transitions of the chain.
func chainXML(title string, types, ids []string, transitions int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<jcr:root %s jcr:primaryType="cq:WorkflowModel" sling:resourceType="cq/workflow/components/model" title="%s">
    <metaData jcr:primaryType="nt:unstructured"/>
    <nodes jcr:primaryType="nt:unstructured">
`, namespaces, title)
	for i, typ := range types {
		process := ""
		if ids[i] != "" {
			process = fmt.Sprintf(` PROCESS="%s" PROCESS_AUTO_ADVANCE="true"`, ids[i])
		}
		fmt.Fprintf(&b, `        <node%d jcr:primaryType="cq:WorkflowNode" title="Node %d" type="%s">
            <metaData jcr:primaryType="nt:unstructured"%s/>
        </node%d>
`, i, i, typ, process, i)
	}
	b.WriteString(`    </nodes>
    <transitions jcr:primaryType="nt:unstructured">
`)
	for i := 0; i < transitions; i++ {
		fmt.Fprintf(&b, `        <node%d_x0023_node%d jcr:primaryType="cq:WorkflowTransition" from="node%d" rule="" to="node%d">
            <metaData jcr:primaryType="nt:unstructured"/>
        </node%d_x0023_node%d>
`, i, i+1, i, i+1, i, i+1)
	}
	b.WriteString(`    </transitions>
</jcr:root>
`)
	return b.String()
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// writeModule lays out a content module holding one modern model named name.
// The runtime document is only written when withRuntime is set.
func writeModule(t *testing.T, name string, withRuntime bool, processIDs ...string) string {
	t.Helper()
	module := t.TempDir()
	jcrRoot := filepath.Join(module, PathToJcrRoot)
	writeFile(t, filepath.Join(jcrRoot, "conf", "global", "settings", "workflow", "models", name, ".content.xml"),
		configXML(name, processIDs...))
	if withRuntime {
		writeFile(t, filepath.Join(jcrRoot, "var", "workflow", "models", name+".xml"), runtimeXML(name, processIDs...))
	}
	return module
}
