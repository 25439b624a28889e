package model

import (
	"fmt"
	"strings"
)

// Action is what the migration does to a step with a given support status.
type Action string

const (
	ActionNone    Action = "None"
	ActionAdded   Action = "Added"
	ActionRemoved Action = "Removed"
)

// SupportStatus classifies a legacy step's compatibility with the cloud service.
type SupportStatus string

const (
	StatusSupported   SupportStatus = "SUPPORTED"
	StatusOptional    SupportStatus = "OPTIONAL"
	StatusRequired    SupportStatus = "REQUIRED"
	StatusUnnecessary SupportStatus = "UNNECESSARY"
	// StatusNuiOOTB marks steps replaced by the asset compute service.
	StatusNuiOOTB SupportStatus = "NUI_OOTB"
	// StatusDMS7OOTB marks steps replaced by the dynamic media connectors.
	StatusDMS7OOTB SupportStatus = "DMS7_OOTB"
	// StatusNuiMigrated marks steps whose configuration moves into a processing profile.
	StatusNuiMigrated SupportStatus = "NUI_MIGRATED"
	StatusUnknown     SupportStatus = "UNKNOWN"
	StatusUnsupported SupportStatus = "UNSUPPORTED"
)

type statusInfo struct {
	action      Action
	description string
}

var statuses = map[SupportStatus]statusInfo{
	StatusSupported:   {ActionNone, "This workflow process is supported in AEM Assets as a Cloud Service environments."},
	StatusOptional:    {ActionNone, "This workflow process is optional in AEM Assets as a Cloud Service environments."},
	StatusRequired:    {ActionAdded, "Required step added to the workflow."},
	StatusUnnecessary: {ActionRemoved, "This process is not necessary in AEM Assets as a Cloud Service."},
	StatusNuiOOTB:     {ActionRemoved, "This functionality is provided by the Asset Compute Service."},
	StatusDMS7OOTB:    {ActionRemoved, "This functionality is provided by our OOTB Dynamic Media connectors."},
	StatusNuiMigrated: {ActionRemoved, "This configuration has been migrated to a processing profile for the Asset Compute Service."},
	StatusUnknown:     {ActionNone, "This workflow step has not been tested for compatibility with AEM Assets as a Cloud Service."},
	StatusUnsupported: {ActionRemoved, "This process is not currently supported in AEM Assets as a Cloud Service."},
}

// ParseSupportStatus converts a status name, ignoring case and surrounding space.
func ParseSupportStatus(s string) (SupportStatus, error) {
	status := SupportStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := statuses[status]; !ok {
		return "", fmt.Errorf("unknown support status %q", s)
	}
	return status, nil
}

// Action returns the action taken for steps with this status.
func (s SupportStatus) Action() Action {
	if info, ok := statuses[s]; ok {
		return info.action
	}
	return ActionNone
}

// Description returns the human-readable rationale for this status.
func (s SupportStatus) Description() string {
	return statuses[s].description
}

func (s SupportStatus) String() string {
	return string(s)
}
