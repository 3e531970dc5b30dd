package domain

// RawExport represents one chat export file before parsing.
// It is the export source's output before normalisation.
type RawExport struct {
	// URI is the original location (file path).
	URI string

	// Name is the conversation name derived from the file name.
	Name string

	// Content is the raw bytes. Undecodable byte sequences are
	// tolerated downstream; they never abort a file.
	Content []byte
}
