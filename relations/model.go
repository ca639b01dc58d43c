// Package relations models the people, companies and meetings of the vault and
// rebuilds the aggregated sections of company pages from them.
package relations

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/dex/vault"
)

// Person is parsed from a page under People/External or People/Internal
type Person struct {
	Name            string `json:"name"`
	Path            string `json:"path"`
	Company         string `json:"company,omitempty"`
	CompanyPage     string `json:"company_page,omitempty"`
	Role            string `json:"role,omitempty"`
	Email           string `json:"email,omitempty"`
	LastInteraction string `json:"last_interaction,omitempty"`
}

// Company is parsed from a page under Active/Relationships/Companies
type Company struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Domains  []string `json:"domains,omitempty"`
	Website  string   `json:"website,omitempty"`
	Industry string   `json:"industry,omitempty"`
	Size     string   `json:"size,omitempty"`
	Stage    string   `json:"stage,omitempty"`
}

// Meeting is a note under Inbox/Meetings named "YYYY-MM-DD - <topic>.md"
type Meeting struct {
	Date  string `json:"date"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

const lastInteractionMarker = "**Last interaction:**"

// NameFromPath turns a page file name into a display name: Jane_Doe.md -> Jane Doe
func NameFromPath(path string) string {
	return strings.ReplaceAll(vault.Stem(path), "_", " ")
}

// FileName turns a display name into a page file name: Acme Corp -> Acme_Corp.md
func FileName(name string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	return r.Replace(strings.TrimSpace(name)) + ".md"
}

// ParsePerson reads the field table and last-interaction line of a person page.
func ParsePerson(path, content string) Person {
	p := Person{Name: NameFromPath(path), Path: path}
	p.Company, _ = vault.TableField(content, "Company")
	p.CompanyPage, _ = vault.TableField(content, "Company Page")
	p.Role, _ = vault.TableField(content, "Role")
	p.Email, _ = vault.TableField(content, "Email")
	for _, line := range strings.Split(content, "\n") {
		if _, after, ok := strings.Cut(line, lastInteractionMarker); ok {
			p.LastInteraction = strings.TrimSpace(after)
			break
		}
	}
	return p
}

// ParseCompany reads the Overview table of a company page
func ParseCompany(path, content string) Company {
	c := Company{Name: NameFromPath(path), Path: path}
	c.Website = field(content, "Website")
	c.Industry = field(content, "Industry")
	c.Size = field(content, "Size")
	c.Stage = field(content, "Stage")
	if domains := field(content, "Domains"); domains != "" {
		for _, d := range strings.Split(domains, ",") {
			if d = strings.TrimSpace(d); d != "" && !placeholder(d) {
				c.Domains = append(c.Domains, d)
			}
		}
	}
	return c
}

// field is TableField with template placeholders ({{...}}) treated as empty
func field(content, name string) string {
	v, _ := vault.TableField(content, name)
	if placeholder(v) {
		return ""
	}
	return v
}

func placeholder(v string) bool {
	return strings.HasPrefix(v, "{{") && strings.HasSuffix(v, "}}")
}

func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", " "))
}

// WorksAt reports whether the person's Company or Company Page field names the company.
func (p Person) WorksAt(companyName string) bool {
	want := normalizeName(companyName)
	if want == "" {
		return false
	}
	if p.Company != "" && strings.Contains(normalizeName(p.Company), want) {
		return true
	}
	if p.CompanyPage != "" {
		underscored := strings.ReplaceAll(companyName, " ", "_")
		if strings.Contains(p.CompanyPage, underscored) || strings.Contains(normalizeName(p.CompanyPage), want) {
			return true
		}
	}
	return false
}

// PeopleAt filters people to those working at the company
func PeopleAt(people []Person, companyName string) []Person {
	var out []Person
	for _, p := range people {
		if p.WorksAt(companyName) {
			out = append(out, p)
		}
	}
	return out
}

// ParseMeeting derives date and title from a meeting note
func ParseMeeting(path, content string) Meeting {
	stem := vault.Stem(path)
	m := Meeting{Path: path, Title: vault.Title(content)}
	if len(stem) >= 10 {
		m.Date = stem[:10]
	}
	if m.Title == "" {
		m.Title = stem
	}
	return m
}

// mentions reports whether content names the company or any of its domains
func mentions(content, companyName string, domains []string) bool {
	lower := strings.ToLower(content)
	if name := strings.ToLower(companyName); name != "" && strings.Contains(lower, name) {
		return true
	}
	for _, d := range domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" && strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

// sortMeetings orders newest first; the path breaks date ties so output is stable
func sortMeetings(ms []Meeting) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Date != ms[j].Date {
			return ms[i].Date > ms[j].Date
		}
		return ms[i].Path < ms[j].Path
	})
}

// link renders a Markdown link, wrapping targets with spaces in angle brackets
func link(text, target string) string {
	target = filepath.ToSlash(target)
	if strings.ContainsAny(target, " ()") {
		target = "<" + target + ">"
	}
	return "[" + text + "](" + target + ")"
}
