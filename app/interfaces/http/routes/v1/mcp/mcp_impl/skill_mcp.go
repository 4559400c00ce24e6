package mcpimpl

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/domain/query"
	"square.ai/skill-gateway/app/domain/resource"
	"square.ai/skill-gateway/app/domain/skill"
	"square.ai/skill-gateway/app/utils/ptr"
)

// SkillMCP exposes skill listing and querying as MCP tools. Tools act as the
// identity the HTTP middleware stored on the request context.
type SkillMCP struct {
	resources    *resource.ResourceService
	resolver     *resource.Resolver
	skillService *skill.SkillService
}

func NewSkillMCP(resources *resource.ResourceService, resolver *resource.Resolver, skillService *skill.SkillService) *SkillMCP {
	return &SkillMCP{
		resources:    resources,
		resolver:     resolver,
		skillService: skillService,
	}
}

type skillSummary struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	SkillType   skill.SkillType `json:"skill_type"`
	Description string          `json:"description,omitempty"`
	Published   bool            `json:"published"`
}

func (s *SkillMCP) RegisterTool(srv *mcpserver.MCPServer) {
	srv.AddTool(
		mcp.NewTool("list_skills",
			mcp.WithDescription("List the skills visible to the caller"),
			mcp.WithNumber("limit", mcp.Description("Maximum number of skills, 1 to 100")),
			mcp.WithNumber("offset", mcp.Description("Number of skills to skip")),
		),
		s.listSkills,
	)
	srv.AddTool(
		mcp.NewTool("query_skill",
			mcp.WithDescription("Ask a skill a question and return its prediction"),
			mcp.WithString("skill_id", mcp.Required(), mcp.Description("Skill id, e.g. skl_...")),
			mcp.WithString("query", mcp.Required(), mcp.Description("The question")),
			mcp.WithString("context", mcp.Description("Passage for extractive and multiple-choice skills")),
		),
		s.querySkill,
	)
}

func (s *SkillMCP) listSkills(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 20)
	if limit < 1 || limit > query.MaxLimit {
		return mcp.NewToolResultError("limit must be between 1 and 100"), nil
	}
	offset := request.GetInt("offset", 0)
	if offset < 0 {
		return mcp.NewToolResultError("offset must not be negative"), nil
	}
	items, total, err := s.resources.ListVisible(ctx, resource.KindSkill, auth.IdentityFromContext(ctx), &query.Pagination{
		Limit:  ptr.ToInt(limit),
		Offset: ptr.ToInt(offset),
		Order:  "asc",
	})
	if err != nil {
		return nil, err
	}
	summaries := make([]skillSummary, 0, len(items))
	for _, item := range items {
		sk, err := skill.FromResource(item)
		if err != nil {
			continue
		}
		summaries = append(summaries, skillSummary{
			ID:          sk.ID,
			Name:        sk.Name,
			SkillType:   sk.SkillType,
			Description: sk.Description,
			Published:   sk.Published,
		})
	}
	jsonBytes, err := json.Marshal(map[string]any{
		"total":  total,
		"skills": summaries,
	})
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *SkillMCP) querySkill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skillID, err := request.RequireString("skill_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	question, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	identity := auth.IdentityFromContext(ctx)
	r, err := s.resolver.Resolve(ctx, resource.KindSkill, skillID, identity, false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sk, err := skill.FromResource(r)
	if err != nil {
		return nil, err
	}
	req := skill.QueryRequest{Query: question}
	if passage := request.GetString("context", ""); passage != "" {
		req.SkillArgs = &skill.SkillArgs{Context: passage}
	}
	resp, err := s.skillService.Query(ctx, sk, identity, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if resp.StatusCode != http.StatusOK {
		return mcp.NewToolResultError(string(resp.Body)), nil
	}
	if answer, err := skill.TopPrediction(resp.Body); err == nil {
		return mcp.NewToolResultText(answer), nil
	}
	return mcp.NewToolResultText(string(resp.Body)), nil
}
