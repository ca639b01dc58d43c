package relations

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/logger"
	"github.com/teranos/dex/sym"
	"github.com/teranos/dex/vault"
	"github.com/teranos/dex/xref"
)

// Company page sections rebuilt by Refresh
const (
	SectionContacts = "Key Contacts"
	SectionMeetings = "Meeting History"
)

// DefaultHistoryLimit is the number of meetings listed on a company page
const DefaultHistoryLimit = 10

// Builder derives company views for one layout
type Builder struct {
	layout       vault.Layout
	historyLimit int
}

// NewBuilder returns a builder listing at most historyLimit meetings per company
// (DefaultHistoryLimit when not positive).
func NewBuilder(l vault.Layout, historyLimit int) *Builder {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Builder{layout: l, historyLimit: historyLimit}
}

// LoadPeople parses every person page, External before Internal.
func (b *Builder) LoadPeople(ctx context.Context) ([]Person, error) {
	log := logger.LoggerFromContext(ctx)

	var people []Person
	for _, sub := range vault.PeopleSubdirs {
		files, err := vault.Glob(filepath.Join(b.layout.People(), sub), "*.md")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			content, err := vault.Read(f)
			if err != nil {
				log.Warnw("Skipping unreadable person page", logger.FieldFile, f, logger.FieldError, err)
				continue
			}
			people = append(people, ParsePerson(b.layout.Rel(f), content))
		}
	}
	return people, nil
}

// FindMeetings returns the newest meetings mentioning the company name or one of
// its domains, case-insensitively.
func (b *Builder) FindMeetings(ctx context.Context, companyName string, domains []string) ([]Meeting, error) {
	log := logger.LoggerFromContext(ctx)

	files, err := vault.Glob(b.layout.Meetings(), "*.md")
	if err != nil {
		return nil, err
	}

	var found []Meeting
	for _, f := range files {
		content, err := vault.Read(f)
		if err != nil {
			log.Warnw("Skipping unreadable meeting note", logger.FieldFile, f, logger.FieldError, err)
			continue
		}
		if mentions(content, companyName, domains) {
			found = append(found, ParseMeeting(b.layout.Rel(f), content))
		}
	}

	sortMeetings(found)
	if len(found) > b.historyLimit {
		found = found[:b.historyLimit]
	}
	return found, nil
}

// CompanyPath resolves a company argument to a page: "Active/..." paths are
// vault-relative and must stay inside the vault, anything else is a file name in
// the companies directory.
func (b *Builder) CompanyPath(companyPath string) (string, error) {
	p := vault.WithMD(strings.TrimSpace(companyPath))
	if strings.HasPrefix(filepath.ToSlash(p), "Active/") {
		return b.layout.Resolve(p)
	}
	return filepath.Join(b.layout.Companies(), filepath.Base(filepath.FromSlash(p))), nil
}

// RefreshResult reports what a refresh found
type RefreshResult struct {
	Success       bool   `json:"success"`
	Company       string `json:"company"`
	ContactsFound int    `json:"contacts_found"`
	MeetingsFound int    `json:"meetings_found"`
	TasksFound    int    `json:"tasks_found"`
	Path          string `json:"filepath"`
	Changed       bool   `json:"changed"`
}

// Refresh rebuilds the Key Contacts, Meeting History and Related Tasks sections
// of a company page and restamps its *Updated:* markers. Every section is
// regenerated whole, so stale rows never survive.
func (b *Builder) Refresh(ctx context.Context, companyPath string, now time.Time) (*RefreshResult, error) {
	log := logger.LoggerFromContext(ctx)

	abs, err := b.CompanyPath(companyPath)
	if err != nil {
		return nil, err
	}
	rel := b.layout.Rel(abs)
	content, err := vault.Read(abs)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, errors.WithHint(
				errors.NewNotFoundError("company page not found: %s", rel),
				"create it with create_company, or pass a path under "+vault.CompaniesDir,
			)
		}
		return nil, err
	}

	company := ParseCompany(rel, content)

	people, err := b.LoadPeople(ctx)
	if err != nil {
		return nil, err
	}
	contacts := PeopleAt(people, company.Name)

	meetings, err := b.FindMeetings(ctx, company.Name, company.Domains)
	if err != nil {
		return nil, err
	}

	refs, err := xref.FindTasksForPage(b.layout, rel)
	if err != nil {
		return nil, err
	}

	stamp := now.Format(sym.StampLayout)
	updated := content
	updated = vault.UpsertSection(updated, SectionContacts, renderContacts(company.Name, contacts, stamp))
	updated = vault.UpsertSection(updated, SectionMeetings, renderMeetings(meetings))
	updated = vault.UpsertSection(updated, xref.SectionTitle, xref.RenderSection(refs, now))
	updated = vault.ReplaceMarker(updated, "Updated", stamp)

	changed := updated != content
	if changed {
		if err := vault.Write(abs, updated); err != nil {
			return nil, err
		}
	}

	log.Infow("Refreshed company page",
		logger.FieldPage, rel,
		"contacts", len(contacts),
		"meetings", len(meetings),
		"tasks", len(refs))

	return &RefreshResult{
		Success:       true,
		Company:       company.Name,
		ContactsFound: len(contacts),
		MeetingsFound: len(meetings),
		TasksFound:    len(refs),
		Path:          rel,
		Changed:       changed,
	}, nil
}

func renderContacts(companyName string, contacts []Person, stamp string) string {
	var sb strings.Builder
	sb.WriteString("## " + SectionContacts + "\n\n")
	sb.WriteString("<!-- Auto-populated from People pages with company: " + companyName + " -->\n\n")
	if len(contacts) == 0 {
		sb.WriteString("*No contacts found. Add a Company or Company Page field to Person pages to link them here.*\n")
	} else {
		sb.WriteString("| Name | Role | Last Interaction |\n")
		sb.WriteString("|------|------|------------------|\n")
		for _, p := range contacts {
			sb.WriteString("| " + link(p.Name, p.Path) + " | " + orDash(p.Role) + " | " + orDash(p.LastInteraction) + " |\n")
		}
	}
	sb.WriteString("\n*Updated: " + stamp + "*\n")
	return sb.String()
}

func renderMeetings(meetings []Meeting) string {
	var sb strings.Builder
	sb.WriteString("## " + SectionMeetings + "\n\n")
	sb.WriteString("<!-- Auto-populated from meetings that mention the company or its domains -->\n\n")
	if len(meetings) == 0 {
		sb.WriteString("*No meetings found. Add domains to this company page for automatic matching.*\n")
	} else {
		sb.WriteString("| Date | Topic | Link |\n")
		sb.WriteString("|------|-------|------|\n")
		for _, m := range meetings {
			sb.WriteString("| " + orDash(m.Date) + " | " + xref.EscapeCell(m.Title) + " | " + link(orDash(m.Date), m.Path) + " |\n")
		}
	}
	sb.WriteString("\n*Meetings detected by company name and email domain matching*\n")
	return sb.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return xref.EscapeCell(s)
}

// CompanySummary is a row of ListCompanies
type CompanySummary struct {
	Name     string `json:"name"`
	Path     string `json:"filepath"`
	Stage    string `json:"stage,omitempty"`
	Industry string `json:"industry,omitempty"`
	Contacts int    `json:"contacts"`
}

// ListCompanies summarizes every company page, sorted by file name.
func (b *Builder) ListCompanies(ctx context.Context) ([]CompanySummary, error) {
	log := logger.LoggerFromContext(ctx)

	files, err := vault.Glob(b.layout.Companies(), "*.md")
	if err != nil {
		return nil, err
	}
	people, err := b.LoadPeople(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CompanySummary, 0, len(files))
	for _, f := range files {
		content, err := vault.Read(f)
		if err != nil {
			log.Warnw("Skipping unreadable company page", logger.FieldFile, f, logger.FieldError, err)
			continue
		}
		c := ParseCompany(b.layout.Rel(f), content)
		out = append(out, CompanySummary{
			Name:     c.Name,
			Path:     c.Path,
			Stage:    c.Stage,
			Industry: c.Industry,
			Contacts: len(PeopleAt(people, c.Name)),
		})
	}
	return out, nil
}
