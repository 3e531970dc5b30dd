// Package whatsapp parses WhatsApp-style plain text chat exports.
//
// The recognised layout is one header line per message,
//
//	<date>, <time> - <sender>: <text>
//
// with arbitrary continuation lines belonging to the preceding
// message. Date ordering varies by device locale; both day-first and
// month-first forms are accepted.
package whatsapp

import (
	"bufio"
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/chatlore/chatlore/internal/core/domain"
	"github.com/chatlore/chatlore/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// headerRe matches a message header line: date, time, " - ", sender,
// ": ", text. The date and time are validated separately so a corrupt
// timestamp drops the message boundary instead of merging its text
// into a neighbour.
var headerRe = regexp.MustCompile(
	`^(\d{1,4}[./-]\d{1,2}[./-]\d{1,4}),? (\d{1,2}:\d{2}(?::\d{2})?(?:\s?[AaPp]\.?[Mm]\.?)?) - ([^:]+): (.*)$`)

// Date layouts tried in order: day-first forms, then month-first.
// Ambiguous dates (both parses valid) resolve day-first.
var (
	dayFirstLayouts = []string{
		"2/1/2006", "2/1/06",
		"2.1.2006", "2.1.06",
		"2-1-2006", "2-1-06",
		"2006-01-02",
	}
	monthFirstLayouts = []string{
		"1/2/2006", "1/2/06",
		"1.2.2006", "1.2.06",
		"1-2-2006", "1-2-06",
	}
	timeLayouts = []string{
		"15:04", "15:04:05",
		"3:04 PM", "3:04:05 PM", "3:04PM",
	}
)

// Normaliser parses WhatsApp-style chat exports.
type Normaliser struct{}

// New creates a new WhatsApp export normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise parses the export and assembles the document.
// A document ID is derived deterministically from the export name so
// re-ingesting the same export replaces it wholesale.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawExport) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	messages, stats := Parse(raw.Content)

	name := raw.Name
	if name == "" {
		name = ConversationName(raw.URI)
	}

	doc, err := domain.AssembleDocument(DocumentID(name), name, raw.URI, messages)
	if err != nil {
		return nil, err
	}

	return &driven.NormaliseResult{
		Document: *doc,
		Stats:    stats,
	}, nil
}

// Parse scans export text into messages.
//
// A line matching the header pattern starts a new message, flushing
// any in-progress one. A non-matching line is a continuation of the
// current message when one exists, otherwise preamble and discarded.
// A header whose timestamp parses under neither date ordering drops
// the whole message boundary: its text and continuations are
// discarded, never merged into a neighbouring message. Undecodable
// bytes are replaced, never fatal. Output order is file order;
// sorting is the assembler's job.
func Parse(raw []byte) ([]domain.Message, driven.ParseStats) {
	text := strings.TrimPrefix(string(raw), "\ufeff")
	text = strings.ToValidUTF8(text, string(utf8.RuneError))
	// WhatsApp sprinkles LTR marks around timestamps on some devices.
	text = strings.ReplaceAll(text, "‎", "")

	var (
		messages []domain.Message
		stats    driven.ParseStats
		current  *domain.Message
		dropping bool
	)

	flush := func() {
		if current == nil {
			return
		}
		if strings.TrimSpace(current.Text) != "" {
			messages = append(messages, *current)
			stats.Recognised++
		}
		current = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		m := headerRe.FindStringSubmatch(line)
		if m == nil {
			if dropping {
				continue // continuation of a dropped boundary
			}
			if current == nil {
				stats.Preamble++
				continue
			}
			current.Text += "\n" + line
			continue
		}

		flush()

		ts, ok := parseTimestamp(m[1], m[2])
		if !ok {
			stats.Dropped++
			dropping = true
			continue
		}

		dropping = false
		current = &domain.Message{
			Timestamp: ts,
			Sender:    strings.TrimSpace(m[3]),
			Text:      m[4],
		}
	}
	flush()

	return messages, stats
}

// parseTimestamp parses a date and time pair, trying day-first date
// layouts before month-first ones.
func parseTimestamp(date, clock string) (time.Time, bool) {
	date = strings.TrimSuffix(date, ",")
	clock = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(clock), ".", ""))

	for _, layouts := range [][]string{dayFirstLayouts, monthFirstLayouts} {
		for _, dl := range layouts {
			for _, tl := range timeLayouts {
				if t, err := time.Parse(dl+" "+tl, date+" "+clock); err == nil {
					return t, true
				}
			}
		}
	}
	return time.Time{}, false
}

// ConversationName derives a conversation name from an export path.
func ConversationName(uri string) string {
	name := filepath.Base(uri)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.TrimPrefix(name, "WhatsApp Chat with ")
	return name
}

// DocumentID derives the stable document ID for a conversation name.
// UUIDv5 keeps the ID constant across re-ingests of the same export.
func DocumentID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("chatlore:export:"+name)).String()
}
