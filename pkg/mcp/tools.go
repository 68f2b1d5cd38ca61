package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowlint/flowlint/internal/store"
	"github.com/flowlint/flowlint/pkg/schema"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// handleValidate lints a workflow definition and optionally records a report.
func (s *FlowlintServer) handleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defRaw := mcp.ParseStringMap(req, "definition", nil)
	if defRaw == nil {
		return mcp.NewToolResultError("definition is required"), nil
	}

	// Marshal then unmarshal to get a proper Definition.
	defBytes, marshalErr := json.Marshal(defRaw)
	if marshalErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid definition: %v", marshalErr)), nil
	}
	var def schema.Definition
	if unmarshalErr := json.Unmarshal(defBytes, &def); unmarshalErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid definition: %v", unmarshalErr)), nil
	}

	result := s.validator.Validate(&def)

	if req.GetBool("record", false) {
		if s.store == nil {
			return mcp.NewToolResultError("record requested but no store configured"), nil
		}
		tenant := req.GetString("tenant_id", store.DefaultTenant)
		if recErr := s.record(ctx, &def, result, tenant); recErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to record report: %v", recErr)), nil
		}
	}

	return marshalResult(struct {
		Valid bool `json:"valid"`
		*schema.ValidationResult
	}{result.Valid(), result})
}

// record persists the definition and one lint report under the tenant.
func (s *FlowlintServer) record(ctx context.Context, def *schema.Definition, result *schema.ValidationResult, tenant string) error {
	now := time.Now().UTC()

	wfID := def.ID
	if wfID == "" {
		wfID = uuid.New().String()
	}
	wf := &store.Workflow{
		ID:         wfID,
		TenantID:   tenant,
		Definition: *def,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if c := def.Container(); c != nil {
		wf.Name = c.Name
	}
	if err := s.store.CreateWorkflow(ctx, wf); err != nil {
		return err
	}

	return s.store.SaveReport(ctx, &store.Report{
		ID:         uuid.New().String(),
		WorkflowID: wfID,
		TenantID:   tenant,
		Valid:      result.Valid(),
		Errors:     result.Errors,
		Warnings:   result.Warnings,
		CreatedAt:  now,
	})
}

// handleProviders lists the provider catalog.
func (s *FlowlintServer) handleProviders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.registry == nil {
		return mcp.NewToolResultError("no provider catalog configured"), nil
	}
	return marshalResult(s.registry.List())
}

// handleReports queries recorded lint reports.
func (s *FlowlintServer) handleReports(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("no store configured"), nil
	}

	filter := store.ReportFilter{
		WorkflowID: req.GetString("workflow_id", ""),
		TenantID:   req.GetString("tenant_id", ""),
		Limit:      req.GetInt("limit", 50),
	}

	reports, err := s.store.ListReports(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report query failed: %v", err)), nil
	}
	return marshalResult(reports)
}

// marshalResult renders a tool result as JSON content.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
