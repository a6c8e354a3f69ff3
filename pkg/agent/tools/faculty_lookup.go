package tools

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type facultyLookupInput struct {
	Name string `json:"name" jsonschema_description:"Full name of the faculty member to look up"`
}

// FacultyLookupTool is a narrowly scoped search: it only queries the
// configured faculty site for a named person, to fill in contact or lab
// details. It is not a general search tool.
type FacultyLookupTool struct {
	search *WebSearchTool
}

func NewFacultyLookupTool(facultySite string) *FacultyLookupTool {
	inner := &WebSearchTool{
		client:       &http.Client{Timeout: 30 * time.Second},
		restrictSite: facultySite,
		maxResults:   3,
	}
	return &FacultyLookupTool{search: inner}
}

func (t *FacultyLookupTool) Name() string { return "faculty_lookup" }

func (t *FacultyLookupTool) Description() string {
	return "Look up a named faculty member on the institution site to find contact details or lab pages. Only usable for a specific person."
}

func (t *FacultyLookupTool) InputSchema() map[string]interface{} {
	return generateSchema[facultyLookupInput]()
}

func (t *FacultyLookupTool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	name := strings.TrimSpace(stringArg(args, "name"))
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	return t.search.Invoke(ctx, map[string]interface{}{
		"query": name,
	})
}
