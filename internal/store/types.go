package store

import (
	"time"

	"github.com/flowlint/flowlint/pkg/schema"
)

// DefaultTenant is used when no tenant is supplied.
const DefaultTenant = "default"

// Workflow is the persisted representation of a lint subject.
type Workflow struct {
	ID         string            `json:"id"`
	TenantID   string            `json:"tenant_id"`
	Name       string            `json:"name,omitempty"`
	Source     string            `json:"source,omitempty"` // file path or URL the definition came from
	Definition schema.Definition `json:"definition"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Report is one recorded validation run over a workflow.
type Report struct {
	ID         string                   `json:"id"`
	WorkflowID string                   `json:"workflow_id"`
	TenantID   string                   `json:"tenant_id"`
	Valid      bool                     `json:"valid"`
	Errors     []schema.ValidationIssue `json:"errors,omitempty"`
	Warnings   []schema.ValidationIssue `json:"warnings,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
}

// WorkflowFilter narrows ListWorkflows.
type WorkflowFilter struct {
	TenantID string
	Since    *time.Time
	Limit    int
	Offset   int
}

// ReportFilter narrows ListReports.
type ReportFilter struct {
	WorkflowID string
	TenantID   string
	OnlyValid  *bool
	Limit      int
}
