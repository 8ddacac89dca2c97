package body

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	MediaURLEncoded = "application/x-www-form-urlencoded"
	MediaMultipart  = "multipart/form-data"
	MediaJSON       = "application/json"
	MediaStream     = "application/octet-stream"
)

// ContentField holds the raw body of requests that are neither URL-encoded
// nor multipart.
const ContentField = "content"

const tempFileAttempts = 3

var dispositionParam = regexp.MustCompile(`(?i)\b(name|filename)="([^"]*)"`)

// MediaType returns the lower-cased media type of a Content-Type header
// without parameters.
func MediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// Parser turns raw request bodies into ParsedBody values. It is safe for
// concurrent use.
type Parser struct {
	config Config
	logger *zap.Logger
}

func NewParser(config Config, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{config: config, logger: logger}
}

// Parse never fails. Malformed multipart blocks are recorded in
// ParsedBody.Errors and skipped.
func (p *Parser) Parse(raw []byte, contentType, verb string) *ParsedBody {
	switch strings.ToUpper(verb) {
	case "GET", "HEAD", "OPTIONS":
		return newParsedBody(nil, contentType)
	}

	b := newParsedBody(raw, contentType)
	if len(raw) == 0 {
		return b
	}
	escape := !p.config.RawValues

	switch MediaType(contentType) {
	case MediaURLEncoded:
		b.Fields = ParseURLEncoded(string(raw), escape)
		b.Escaped = escape
	case MediaMultipart:
		b.Escaped = escape
		boundary, ok := Boundary(contentType)
		if !ok {
			b.Fields = ParseURLEncoded(string(raw), escape)
			return b
		}
		p.parseMultipart(b, boundary, escape)
	default:
		b.Fields[ContentField] = string(raw)
	}
	return b
}

func (p *Parser) parseMultipart(b *ParsedBody, boundary string, escape bool) {
	blocks, errs := scanBlocks(b.Raw, boundary, p.config.maxHeaderBytes())
	b.Errors = append(b.Errors, errs...)
	for i := range blocks {
		if err := p.applyBlock(b, &blocks[i], escape); err != nil {
			b.Errors = append(b.Errors, err)
		}
	}
	for _, err := range b.Errors {
		p.logger.Debug("skipped multipart block", zap.Error(err))
	}
}

func (p *Parser) applyBlock(b *ParsedBody, blk *block, escape bool) error {
	disposition, ok := blk.header("content-disposition")
	if !ok {
		return malformed(blk.index, "missing Content-Disposition header")
	}
	params := dispositionParams(disposition)
	name := params["name"]
	if name == "" {
		return malformed(blk.index, "missing name in Content-Disposition")
	}
	contentType, _ := blk.header("content-type")

	if strings.Contains(strings.ToLower(contentType), MediaStream) {
		b.Streams[name] = bytes.Clone(blk.content)
		return nil
	}

	if filename, isFile := params["filename"]; isFile {
		base, multiple := ListBase(name)
		entry := FileEntry{
			Name: filename,
			Type: contentType,
			Size: int64(len(blk.content)),
		}
		path, err := p.materialize(blk.content)
		if err != nil {
			entry.Error = fmt.Sprintf("cannot write into temp file: %v", err)
			entry.Size = 0
			p.logger.Warn("failed to materialize upload",
				zap.String("field", name),
				zap.String("filename", filename),
				zap.Error(err),
			)
		}
		entry.TmpName = path
		b.addFile(base, multiple, entry)
		return nil
	}

	value := string(blk.content)
	if escape {
		value = Escape(value)
	}
	b.Fields.Add(name, value)
	return nil
}

func dispositionParams(disposition string) map[string]string {
	_, params, err := mime.ParseMediaType(disposition)
	if err == nil {
		return params
	}
	params = map[string]string{}
	for _, m := range dispositionParam.FindAllStringSubmatch(disposition, -1) {
		key := strings.ToLower(m[1])
		if _, seen := params[key]; !seen {
			params[key] = m[2]
		}
	}
	return params
}

// materialize writes content to a new, uniquely named temp file.
func (p *Parser) materialize(content []byte) (string, error) {
	dir := p.config.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	for attempt := 0; attempt < tempFileAttempts; attempt++ {
		path := filepath.Join(dir, "upload-"+shortID()+".tmp")
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		_, writeErr := f.Write(content)
		if err := multierr.Combine(writeErr, f.Close()); err != nil {
			_ = os.Remove(path)
			return "", err
		}
		return path, nil
	}
	return "", fmt.Errorf("no unique name in %s after %d attempts", dir, tempFileAttempts)
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
