package body

import (
	"bytes"
	"fmt"
	"strings"
)

type scanState int

const (
	stateExpectBoundary scanState = iota
	stateReadHeaders
	stateReadBody
)

// block is one delimited multipart segment. Header keys are lower-cased.
type block struct {
	index   int
	headers map[string]string
	content []byte
}

func (b *block) header(key string) (string, bool) {
	v, ok := b.headers[key]
	return v, ok
}

// Boundary extracts the multipart boundary token from a Content-Type header.
func Boundary(contentType string) (string, bool) {
	lower := strings.ToLower(contentType)
	i := strings.Index(lower, "boundary=")
	if i < 0 {
		return "", false
	}
	token := contentType[i+len("boundary="):]
	if j := strings.IndexByte(token, ';'); j >= 0 {
		token = token[:j]
	}
	token = strings.Trim(strings.TrimSpace(token), `"`)
	if token == "" {
		return "", false
	}
	return token, true
}

// scanBlocks splits data into multipart blocks. Blocks that cannot be framed
// are reported as errors and skipped; scanning resumes at the next delimiter.
func scanBlocks(data []byte, boundary string, maxHeaderBytes int) ([]block, []error) {
	var (
		blocks []block
		errs   []error
		delim  = []byte("--" + boundary)
		// a body ends at a delimiter that starts its own line
		bodyEnd = append([]byte("\n"), delim...)
		state   = stateExpectBoundary
		pos     int
		index   int
		cur     block
	)

	for {
		switch state {
		case stateExpectBoundary:
			i := bytes.Index(data[pos:], delim)
			if i < 0 {
				return blocks, errs
			}
			pos += i + len(delim)
			if bytes.HasPrefix(data[pos:], []byte("--")) {
				return blocks, errs
			}
			n, ok := lineBreak(data[pos:])
			if !ok {
				errs = append(errs, malformed(index, "delimiter not followed by a line break"))
				index++
				continue
			}
			pos += n
			cur = block{index: index, headers: map[string]string{}}
			state = stateReadHeaders

		case stateReadHeaders:
			var (
				size    int
				lastKey string
				done    bool
			)
			for !done {
				eol := bytes.IndexByte(data[pos:], '\n')
				if eol < 0 {
					errs = append(errs, malformed(cur.index, "unexpected end of body in headers"))
					return blocks, errs
				}
				line := bytes.TrimRight(data[pos:pos+eol], "\r")
				if bytes.HasPrefix(line, delim) {
					errs = append(errs, malformed(cur.index, "delimiter before end of headers"))
					break
				}
				size += eol + 1
				if size > maxHeaderBytes {
					errs = append(errs, malformed(cur.index, "header section exceeds %d bytes", maxHeaderBytes))
					pos += eol + 1
					break
				}
				pos += eol + 1
				switch {
				case len(line) == 0:
					done = true
				case (line[0] == ' ' || line[0] == '\t') && lastKey != "":
					cur.headers[lastKey] += " " + string(bytes.TrimSpace(line))
				default:
					key, value, ok := bytes.Cut(line, []byte(":"))
					if !ok {
						continue
					}
					lastKey = strings.ToLower(string(bytes.TrimSpace(key)))
					cur.headers[lastKey] = string(bytes.TrimSpace(value))
				}
			}
			if !done {
				index++
				state = stateExpectBoundary
				continue
			}
			state = stateReadBody

		case stateReadBody:
			// the blank line's '\n' may itself precede the delimiter
			i := bytes.Index(data[pos-1:], bodyEnd)
			if i < 0 {
				errs = append(errs, malformed(cur.index, "missing closing delimiter"))
				return blocks, errs
			}
			end := pos - 1 + i
			var content []byte
			if end > pos {
				content = bytes.TrimSuffix(data[pos:end], []byte("\r"))
			}
			cur.content = content
			blocks = append(blocks, cur)
			pos = end + 1
			index++
			state = stateExpectBoundary

		default:
			panic(fmt.Sprintf("body: unknown scan state %d", state))
		}
	}
}

// lineBreak reports the length of the line break at the start of b. Transport
// padding before the break is tolerated.
func lineBreak(b []byte) (int, bool) {
	n := 0
	for n < len(b) && (b[n] == ' ' || b[n] == '\t') {
		n++
	}
	switch {
	case bytes.HasPrefix(b[n:], []byte("\r\n")):
		return n + 2, true
	case bytes.HasPrefix(b[n:], []byte("\n")):
		return n + 1, true
	default:
		return 0, false
	}
}
