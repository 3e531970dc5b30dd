package cli

import (
	"context"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
}

func (m *mockSearchService) Search(_ context.Context, _ string, _ int) ([]domain.SearchResult, error) {
	return m.results, m.err
}

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer *domain.Answer
	err    error
}

func (m *mockAskService) Ask(_ context.Context, _ string, opts driving.AskOptions) (*domain.Answer, error) {
	if m.err != nil {
		return m.answer, m.err
	}
	if opts.OnFragment != nil && m.answer != nil && m.answer.Generated {
		opts.OnFragment(m.answer.Text)
	}
	return m.answer, nil
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	stats     *driving.ArchiveStats
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

func (m *mockDocumentService) Stats(_ context.Context) (*driving.ArchiveStats, error) {
	return m.stats, m.err
}

// mockIngestOrchestrator is a mock implementation of driving.IngestOrchestrator.
type mockIngestOrchestrator struct {
	report   *driving.IngestReport
	err      error
	watchErr error
	watched  bool
}

func (m *mockIngestOrchestrator) IngestAll(_ context.Context) (*driving.IngestReport, error) {
	return m.report, m.err
}

func (m *mockIngestOrchestrator) Watch(_ context.Context) error {
	m.watched = true
	return m.watchErr
}
