package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlore/chatlore/internal/core/ports/driving"
)

func TestIngestCmd_PrintsReport(t *testing.T) {
	oldService := ingestOrchestrator
	ingestOrchestrator = &mockIngestOrchestrator{
		report: &driving.IngestReport{
			RunID:         "run-1",
			FilesSeen:     3,
			FilesIngested: 2,
			Messages:      40,
			Chunks:        7,
			Failures: []driving.FileError{
				{URI: "/exports/broken.txt", Err: errors.New("empty document")},
			},
		},
	}
	defer func() { ingestOrchestrator = oldService }()

	out, err := execute(t, "ingest")

	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 2 of 3 exports (40 messages, 7 chunks).")
	assert.Contains(t, out, "/exports/broken.txt")
	assert.Contains(t, out, "empty document")
}

func TestIngestCmd_Failure(t *testing.T) {
	oldService := ingestOrchestrator
	ingestOrchestrator = &mockIngestOrchestrator{err: errors.New("store unavailable")}
	defer func() { ingestOrchestrator = oldService }()

	_, err := execute(t, "ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unavailable")
}

func TestIngestCmd_WatchFlag(t *testing.T) {
	mock := &mockIngestOrchestrator{report: &driving.IngestReport{}}
	oldService := ingestOrchestrator
	ingestOrchestrator = mock
	defer func() {
		ingestOrchestrator = oldService
		ingestWatch = false
	}()

	_, err := execute(t, "ingest", "--watch")

	require.NoError(t, err)
	assert.True(t, mock.watched)
}

func TestIngestCmd_NoService(t *testing.T) {
	oldService := ingestOrchestrator
	ingestOrchestrator = nil
	defer func() { ingestOrchestrator = oldService }()

	_, err := execute(t, "ingest")
	assert.Error(t, err)
}
