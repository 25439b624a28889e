package transform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codebypatrickleung/wfmigrate/internal/audit"
	"github.com/codebypatrickleung/wfmigrate/internal/graph"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
	"github.com/codebypatrickleung/wfmigrate/internal/model"
	"github.com/codebypatrickleung/wfmigrate/internal/steps"
)

const (
	supportedProcess   = "com.day.cq.dam.core.process.SendEmailProcess"
	unsupportedProcess = "com.day.cq.dam.core.process.CommandLineProcess"
	optionalProcess    = "com.day.cq.dam.core.process.UpdateFolderThumbnailProcess"
	unknownProcess     = "com.customer.workflow.NotifyProcess"

	namespaces = `xmlns:sling="http://sling.apache.org/jcr/sling/1.0" xmlns:cq="http://www.day.com/jcr/cq/1.0" ` +
		`xmlns:jcr="http://www.jcp.org/jcr/1.0" xmlns:nt="http://www.jcp.org/jcr/nt/1.0"`
)

func testClassifier() *steps.Classifier {
	return steps.NewClassifier(steps.NewTable(map[string]model.SupportStatus{
		supportedProcess:   model.StatusSupported,
		unsupportedProcess: model.StatusUnsupported,
		optionalProcess:    model.StatusOptional,
		CompletionProcess:  model.StatusRequired,
	}))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// writeModel lays out a modern model named custom running processIDs in order and loads it.
func writeModel(t *testing.T, processIDs ...string) *model.WorkflowModel {
	t.Helper()
	module := t.TempDir()
	jcrRoot := filepath.Join(module, graph.PathToJcrRoot)

	var flow strings.Builder
	for i, id := range processIDs {
		fmt.Fprintf(&flow, `            <process_%d jcr:primaryType="nt:unstructured" jcr:title="Step %d" sling:resourceType="cq/workflow/components/model/process">
                <metaData jcr:primaryType="nt:unstructured" PROCESS="%s" PROCESS_AUTO_ADVANCE="true"/>
            </process_%d>
`, i, i, id, i)
	}
	writeFile(t, filepath.Join(jcrRoot, "conf", "global", "settings", "workflow", "models", "custom", ".content.xml"),
		fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<jcr:root %s jcr:primaryType="cq:Page">
    <jcr:content jcr:primaryType="cq:PageContent" jcr:title="custom" sling:resourceType="cq/workflow/components/pages/model">
        <flow jcr:primaryType="nt:unstructured" sling:resourceType="foundation/components/parsys">
%s        </flow>
    </jcr:content>
</jcr:root>
`, namespaces, flow.String()))

	var nodes, transitions strings.Builder
	all := append(append([]string{"START"}, processIDs...), "END")
	for i, id := range all {
		typ, md := "PROCESS", fmt.Sprintf(` PROCESS="%s"`, id)
		if i == 0 || i == len(all)-1 {
			typ, md = id, ""
		}
		fmt.Fprintf(&nodes, `        <node%d jcr:primaryType="cq:WorkflowNode" title="Node %d" type="%s">
            <metaData jcr:primaryType="nt:unstructured"%s/>
        </node%d>
`, i, i, typ, md, i)
		if i > 0 {
			fmt.Fprintf(&transitions, `        <node%d_x0023_node%d jcr:primaryType="cq:WorkflowTransition" from="node%d" rule="" to="node%d"/>
`, i-1, i, i-1, i)
		}
	}
	writeFile(t, filepath.Join(jcrRoot, "var", "workflow", "models", "custom.xml"),
		fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<jcr:root %s jcr:primaryType="cq:WorkflowModel" title="custom">
    <nodes jcr:primaryType="nt:unstructured">
%s    </nodes>
    <transitions jcr:primaryType="nt:unstructured">
%s    </transitions>
</jcr:root>
`, namespaces, nodes.String(), transitions.String()))

	m, err := graph.NewStore(logger.New(false)).LoadModel(module, "/var/workflow/models/custom")
	require.NoError(t, err)
	require.NotNil(t, m)
	return m
}

func newTestTransformer(store StepStore) (*Transformer, *audit.Tracker) {
	tracker := audit.NewTracker()
	if store == nil {
		store = graph.NewStore(logger.New(false))
	}
	return NewTransformer(testClassifier(), store, tracker, logger.New(false)), tracker
}
