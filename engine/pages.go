package engine

import (
	"context"
	"strings"

	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/logger"
	"github.com/teranos/dex/relations"
	"github.com/teranos/dex/tasks"
	"github.com/teranos/dex/vault"
	"github.com/teranos/dex/xref"
)

// SyncTaskRefs rebuilds the Related Tasks section of a linked page.
func (e *Engine) SyncTaskRefs(ctx context.Context, pagePath string) (*xref.SyncResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.begin(ctx, "sync_task_refs")
	if strings.TrimSpace(pagePath) == "" {
		return nil, reject(errors.NewInvalidRequestError("page_path is required"), nil)
	}
	res, err := xref.SyncRefs(s.ctx, s.layout, strings.TrimSpace(pagePath), s.now)
	if err != nil {
		return nil, reject(err, nil)
	}
	return res, nil
}

// RefreshCompany rebuilds the contacts, meetings and tasks sections of a company page.
func (e *Engine) RefreshCompany(ctx context.Context, companyPath string) (*relations.RefreshResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.begin(ctx, "refresh_company")
	if strings.TrimSpace(companyPath) == "" {
		return nil, reject(errors.NewInvalidRequestError("company_path is required"), nil)
	}
	res, err := s.builder(e.cfg.Meetings.HistoryLimit).Refresh(s.ctx, companyPath, s.now)
	if err != nil {
		return nil, reject(err, nil)
	}
	return res, nil
}

// CompanyList is the result of ListCompanies
type CompanyList struct {
	Companies []relations.CompanySummary `json:"companies"`
	Count     int                        `json:"count"`
}

// ListCompanies summarizes every company page.
func (e *Engine) ListCompanies(ctx context.Context) (*CompanyList, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.begin(ctx, "list_companies")
	list, err := s.builder(e.cfg.Meetings.HistoryLimit).ListCompanies(s.ctx)
	if err != nil {
		return nil, reject(err, nil)
	}
	return &CompanyList{Companies: list, Count: len(list)}, nil
}

// CreateCompany writes a new company page. Its aggregated sections stay empty
// until RefreshCompany runs.
func (e *Engine) CreateCompany(ctx context.Context, req relations.NewCompany) (*relations.CreateResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.begin(ctx, "create_company")
	res, err := s.builder(e.cfg.Meetings.HistoryLimit).CreateCompany(s.ctx, req, s.now)
	if err != nil {
		return nil, reject(err, nil)
	}
	return res, nil
}

// LinkedSync is the result of SyncLinkedPages
type LinkedSync struct {
	Pages  []string            `json:"synced_pages"`
	Failed []tasks.FileFailure `json:"failed_pages,omitempty"`
}

// SyncLinkedPages re-syncs every page referenced from the task list, in order of
// first reference. A page that cannot be synced is reported and skipped.
func (e *Engine) SyncLinkedPages(ctx context.Context) (*LinkedSync, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.begin(ctx, "sync_linked_pages")
	all, err := s.loadTasks()
	if err != nil {
		return nil, reject(err, nil)
	}

	out := &LinkedSync{Pages: []string{}}
	seen := make(map[string]bool)
	for _, t := range all {
		if t.Source != tasks.SourceTasks {
			continue
		}
		for _, ref := range t.FileReferences {
			page := vault.WithMD(ref)
			if seen[page] {
				continue
			}
			seen[page] = true
			if _, err := xref.SyncRefs(s.ctx, s.layout, page, s.now); err != nil {
				s.log.Warnw("Could not sync linked page", logger.FieldPage, page, logger.FieldError, err)
				out.Failed = append(out.Failed, tasks.FileFailure{File: page, Error: err.Error()})
				continue
			}
			out.Pages = append(out.Pages, page)
		}
	}
	s.log.Infow("Linked pages synced", logger.FieldCount, len(out.Pages), "failed", len(out.Failed))
	return out, nil
}
