package relations

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/logger"
	"github.com/teranos/dex/vault"
	"github.com/teranos/dex/xref"
)

// Company stages accepted by CreateCompany
var Stages = []string{"Prospect", "Customer", "Partner", "Churned"}

// DefaultStage is used when NewCompany.Stage is empty
const DefaultStage = "Prospect"

// NewCompany describes a company page to create
type NewCompany struct {
	Name     string   `json:"name"`
	Website  string   `json:"website,omitempty"`
	Industry string   `json:"industry,omitempty"`
	Size     string   `json:"size,omitempty"`
	Stage    string   `json:"stage,omitempty"`
	Domains  []string `json:"domains,omitempty"`
}

// CreateResult is returned by CreateCompany
type CreateResult struct {
	Success bool     `json:"success"`
	Company string   `json:"company"`
	Path    string   `json:"filepath"`
	Domains []string `json:"domains,omitempty"`
	Message string   `json:"message"`
}

// CanonicalStage matches stage case-insensitively against Stages.
func CanonicalStage(stage string) (string, bool) {
	s := strings.TrimSpace(stage)
	if s == "" {
		return DefaultStage, true
	}
	for _, known := range Stages {
		if strings.EqualFold(s, known) {
			return known, true
		}
	}
	return "", false
}

// DomainFromWebsite strips scheme, www. and any path: https://www.acme.com/about -> acme.com
func DomainFromWebsite(website string) string {
	d := strings.TrimSpace(website)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	d, _, _ = strings.Cut(d, "/")
	return strings.ToLower(d)
}

// CreateCompany writes a new company page from the standard template. The page
// must not exist yet.
func (b *Builder) CreateCompany(ctx context.Context, nc NewCompany, now time.Time) (*CreateResult, error) {
	log := logger.LoggerFromContext(ctx)

	name := strings.TrimSpace(nc.Name)
	if name == "" {
		return nil, errors.WithHint(
			errors.NewInvalidRequestError("company name is required"),
			"pass the company's display name, e.g. \"Acme Corp\"",
		)
	}
	stage, ok := CanonicalStage(nc.Stage)
	if !ok {
		return nil, errors.WithHintf(
			errors.NewInvalidRequestError("unknown stage %q", nc.Stage),
			"use one of: %s", strings.Join(Stages, ", "),
		)
	}

	abs := filepath.Join(b.layout.Companies(), FileName(name))
	rel := b.layout.Rel(abs)
	if vault.Exists(abs) {
		return nil, errors.WithHint(
			errors.Mark(errors.Newf("company page already exists: %s", rel), errors.ErrConflict),
			"refresh it with refresh_company instead",
		)
	}

	var domains []string
	for _, d := range nc.Domains {
		if d = strings.TrimSpace(d); d != "" {
			domains = append(domains, d)
		}
	}
	if len(domains) == 0 && strings.TrimSpace(nc.Website) != "" {
		if d := DomainFromWebsite(nc.Website); d != "" {
			domains = []string{d}
		}
	}

	page := companyTemplate(name, strings.TrimSpace(nc.Website), strings.TrimSpace(nc.Industry),
		strings.TrimSpace(nc.Size), stage, domains, now)
	if err := vault.Write(abs, page); err != nil {
		return nil, err
	}

	log.Infow("Created company page", logger.FieldPage, rel, "stage", stage)
	return &CreateResult{
		Success: true,
		Company: name,
		Path:    rel,
		Domains: domains,
		Message: "Created company page: " + rel,
	}, nil
}

func orPlaceholder(v, placeholder string) string {
	if v == "" {
		return "{{" + placeholder + "}}"
	}
	return v
}

func companyTemplate(name, website, industry, size, stage string, domains []string, now time.Time) string {
	day := now.Format("2006-01-02")
	lines := []string{
		"# " + name,
		"",
		"## Overview",
		"",
		"| Field | Value |",
		"|-------|-------|",
		"| **Website** | " + orPlaceholder(website, "company.com") + " |",
		"| **Industry** | " + orPlaceholder(industry, "Industry") + " |",
		"| **Size** | " + orPlaceholder(size, "Startup / Scale-up / Enterprise") + " |",
		"| **Stage** | " + stage + " |",
		"| **Domains** | " + orPlaceholder(strings.Join(domains, ", "), "company.com") + " |",
		"",
		"---",
		"",
		"## " + SectionContacts,
		"",
		"<!-- Auto-populated from People pages with company: " + name + " -->",
		"",
		"| Name | Role | Last Interaction |",
		"|------|------|------------------|",
		"",
		"*Run refresh_company to update from People pages*",
		"",
		"---",
		"",
		"## Projects",
		"",
		"<!-- Projects involving this company -->",
		"",
		"---",
		"",
		"## " + SectionMeetings,
		"",
		"<!-- Auto-populated from meetings that mention the company or its domains -->",
		"",
		"| Date | Topic | Link |",
		"|------|-------|------|",
		"",
		"*Meetings detected by company name and email domain matching*",
		"",
		"---",
		"",
		"## " + xref.SectionTitle,
		"",
		"*Not yet synced from " + vault.TasksFile + "*",
		"",
		"---",
		"",
		"## Notes",
		"",
		"",
		"",
		"---",
		"",
		"*Created: " + day + "*",
		"*Updated: " + day + "*",
	}
	return strings.Join(lines, "\n") + "\n"
}
