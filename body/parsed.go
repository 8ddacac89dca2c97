package body

import (
	"errors"
	"io/fs"
	"os"

	"go.uber.org/multierr"
)

// FileEntry describes one uploaded file that was written to a temp file.
type FileEntry struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	TmpName string `json:"tmp_name"`
	Error   string `json:"error"`
	Size    int64  `json:"size"`
}

// FileField groups the uploads submitted under one field name. Multiple is
// set when the field was declared with the "[]" list suffix.
type FileField struct {
	Multiple bool        `json:"multiple"`
	Entries  []FileEntry `json:"entries"`
}

// First returns the first entry of the field.
func (f FileField) First() (FileEntry, bool) {
	if len(f.Entries) == 0 {
		return FileEntry{}, false
	}
	return f.Entries[0], true
}

// Names returns the client file names in submission order.
func (f FileField) Names() []string {
	out := make([]string, len(f.Entries))
	for i, e := range f.Entries {
		out[i] = e.Name
	}
	return out
}

// TmpNames returns the temp file paths in submission order.
func (f FileField) TmpNames() []string {
	out := make([]string, len(f.Entries))
	for i, e := range f.Entries {
		out[i] = e.TmpName
	}
	return out
}

// ParsedBody is the normalized result of parsing a request body.
type ParsedBody struct {
	ContentType string
	Raw         []byte
	Fields      Fields
	Files       map[string]FileField
	Streams     map[string][]byte
	Errors      []error
	// Escaped is true when Fields values were HTML-escaped while parsing.
	Escaped bool
}

func newParsedBody(raw []byte, contentType string) *ParsedBody {
	return &ParsedBody{
		ContentType: contentType,
		Raw:         raw,
		Fields:      Fields{},
		Files:       map[string]FileField{},
		Streams:     map[string][]byte{},
	}
}

// Empty returns a ParsedBody with no content.
func Empty() *ParsedBody {
	return newParsedBody(nil, "")
}

// Err folds the per-block parse errors into a single error, or nil.
func (b *ParsedBody) Err() error {
	if b == nil {
		return nil
	}
	return multierr.Combine(b.Errors...)
}

// File returns the uploads stored under name.
func (b *ParsedBody) File(name string) (FileField, bool) {
	if b == nil {
		return FileField{}, false
	}
	f, ok := b.Files[name]
	return f, ok
}

// Cleanup removes every temp file materialized for this body. Files that are
// already gone are ignored.
func (b *ParsedBody) Cleanup() error {
	if b == nil {
		return nil
	}
	var err error
	for _, field := range b.Files {
		for _, e := range field.Entries {
			if e.TmpName == "" {
				continue
			}
			if rmErr := os.Remove(e.TmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				err = multierr.Append(err, rmErr)
			}
		}
	}
	return err
}

func (b *ParsedBody) addFile(name string, multiple bool, entry FileEntry) {
	if !multiple {
		b.Files[name] = FileField{Entries: []FileEntry{entry}}
		return
	}
	field := b.Files[name]
	field.Multiple = true
	field.Entries = append(field.Entries, entry)
	b.Files[name] = field
}
