package body

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testBoundary = "XyZ123"

func multipartBody(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString("--" + testBoundary + "\r\n")
		b.WriteString(p)
		b.WriteString("\r\n")
	}
	b.WriteString("--" + testBoundary + "--\r\n")
	return b.String()
}

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	return NewParser(Config{TempDir: t.TempDir()}, nil)
}

func TestParseMultipartFieldAndFile(t *testing.T) {
	p := newTestParser(t)
	raw := multipartBody(
		"Content-Disposition: form-data; name=\"x\"\r\n\r\nhello",
		"Content-Disposition: form-data; name=\"f\"; filename=\"t.txt\"\r\nContent-Type: text/plain\r\n\r\nabc",
	)

	b := p.Parse([]byte(raw), "multipart/form-data; boundary="+testBoundary, "PUT")
	require.NoError(t, b.Err())
	require.Equal(t, Fields{"x": "hello"}, b.Fields)

	f, ok := b.File("f")
	require.True(t, ok)
	require.False(t, f.Multiple)
	entry, ok := f.First()
	require.True(t, ok)
	require.Equal(t, "t.txt", entry.Name)
	require.Equal(t, "text/plain", entry.Type)
	require.EqualValues(t, 3, entry.Size)
	require.Empty(t, entry.Error)

	content, err := os.ReadFile(entry.TmpName)
	require.NoError(t, err)
	require.Equal(t, "abc", string(content))

	require.NoError(t, b.Cleanup())
	_, err = os.Stat(entry.TmpName)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseMultipartMalformedBlockIsSkipped(t *testing.T) {
	p := newTestParser(t)
	raw := multipartBody(
		"X-Junk: nothing useful\r\n\r\nlost",
		"Content-Disposition: form-data; name=\"y\"\r\n\r\nkept",
	)

	b := p.Parse([]byte(raw), "multipart/form-data; boundary="+testBoundary, "POST")
	require.Equal(t, Fields{"y": "kept"}, b.Fields)
	require.Len(t, b.Errors, 1)

	var blockErr *MalformedBlockError
	require.ErrorAs(t, b.Err(), &blockErr)
	require.Equal(t, 0, blockErr.Index)
	require.ErrorIs(t, b.Err(), ErrMalformedBlock)
}

func TestParseMultipartLists(t *testing.T) {
	p := newTestParser(t)
	raw := multipartBody(
		"Content-Disposition: form-data; name=\"tag[]\"\r\n\r\n<a>",
		"Content-Disposition: form-data; name=\"tag[]\"\r\n\r\nb",
		"Content-Disposition: form-data; name=\"doc[]\"; filename=\"one.txt\"\r\nContent-Type: text/plain\r\n\r\n1",
		"Content-Disposition: form-data; name=\"doc[]\"; filename=\"two.txt\"\r\nContent-Type: text/plain\r\n\r\n22",
	)

	b := p.Parse([]byte(raw), "multipart/form-data; boundary="+testBoundary, "PATCH")
	require.NoError(t, b.Err())
	require.Equal(t, []string{"&lt;a&gt;", "b"}, b.Fields.Strings("tag"))

	docs, ok := b.File("doc")
	require.True(t, ok)
	require.True(t, docs.Multiple)
	require.Equal(t, []string{"one.txt", "two.txt"}, docs.Names())
	for _, path := range docs.TmpNames() {
		require.Equal(t, filepath.Dir(path), p.config.TempDir)
	}
	require.EqualValues(t, 2, docs.Entries[1].Size)
}

func TestParseMultipartStreamsAndEdgeCases(t *testing.T) {
	p := newTestParser(t)
	raw := "preamble\r\n" + multipartBody(
		"Content-Disposition: form-data; name=\"blob\"\r\nContent-Type: application/octet-stream\r\n\r\n\x00\x01\r\n\x02",
		"Content-Disposition: form-data; name=\"empty\"\r\n\r\n",
		"Content-Disposition: form-data;\r\n name=\"folded\"\r\n\r\nline1\r\nline2",
	)

	b := p.Parse([]byte(raw), `multipart/form-data; boundary="`+testBoundary+`"; charset=utf-8`, "POST")
	require.NoError(t, b.Err())
	require.Equal(t, []byte("\x00\x01\r\n\x02"), b.Streams["blob"])
	require.Equal(t, "", b.Fields.String("empty"))
	require.True(t, b.Fields.Has("empty"))
	require.Equal(t, "line1\r\nline2", b.Fields.String("folded"))
}

func TestParseMultipartFraming(t *testing.T) {
	ct := "multipart/form-data; boundary=" + testBoundary
	tests := []struct {
		name      string
		raw       string
		wantField Fields
		wantErrs  int
	}{
		{
			name:      "missing closing delimiter",
			raw:       "--" + testBoundary + "\r\nContent-Disposition: form-data; name=\"a\"\r\n\r\nvalue",
			wantField: Fields{},
			wantErrs:  1,
		},
		{
			name:      "headers never terminated",
			raw:       "--" + testBoundary + "\r\nContent-Disposition: form-data; name=\"a\"",
			wantField: Fields{},
			wantErrs:  1,
		},
		{
			name: "delimiter inside headers",
			raw: "--" + testBoundary + "\r\nContent-Disposition: form-data; name=\"a\"\r\n" +
				"--" + testBoundary + "\r\nContent-Disposition: form-data; name=\"b\"\r\n\r\nok\r\n" +
				"--" + testBoundary + "--",
			wantField: Fields{"b": "ok"},
			wantErrs:  1,
		},
		{
			name:      "bare line feeds",
			raw:       "--" + testBoundary + "\nContent-Disposition: form-data; name=\"a\"\n\nlf\n--" + testBoundary + "--\n",
			wantField: Fields{"a": "lf"},
		},
		{
			name:      "no delimiters",
			raw:       "just text",
			wantField: Fields{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestParser(t).Parse([]byte(tt.raw), ct, "PUT")
			require.Equal(t, tt.wantField, b.Fields)
			require.Len(t, b.Errors, tt.wantErrs)
		})
	}
}

func TestParseMultipartHeaderLimit(t *testing.T) {
	p := NewParser(Config{MaxHeaderBytes: 64}, nil)
	raw := multipartBody(
		"Content-Disposition: form-data; name=\"long\"; x=\""+strings.Repeat("a", 128)+"\"\r\n\r\nv",
		"Content-Disposition: form-data; name=\"s\"\r\n\r\nw",
	)
	b := p.Parse([]byte(raw), "multipart/form-data; boundary="+testBoundary, "PUT")
	require.Len(t, b.Errors, 1)
	require.Equal(t, Fields{"s": "w"}, b.Fields)
}

func TestParseDispatchesOnContentType(t *testing.T) {
	p := newTestParser(t)

	t.Run("url encoded", func(t *testing.T) {
		b := p.Parse([]byte("a=1&b[]=2&b[]=3"), "application/x-www-form-urlencoded; charset=UTF-8", "PUT")
		require.True(t, b.Escaped)
		require.Equal(t, Fields{"a": "1", "b": []string{"2", "3"}}, b.Fields)
	})

	t.Run("multipart without boundary", func(t *testing.T) {
		b := p.Parse([]byte("a=%3C"), "multipart/form-data", "PUT")
		require.Equal(t, Fields{"a": "&lt;"}, b.Fields)
	})

	t.Run("other content", func(t *testing.T) {
		b := p.Parse([]byte(`{"a":1}`), "application/json", "POST")
		require.False(t, b.Escaped)
		require.Equal(t, `{"a":1}`, b.Fields.String(ContentField))
		require.Equal(t, []byte(`{"a":1}`), b.Raw)
	})

	t.Run("get ignores body", func(t *testing.T) {
		b := p.Parse([]byte("a=1"), "application/x-www-form-urlencoded", "get")
		require.Empty(t, b.Fields)
		require.Nil(t, b.Raw)
	})

	t.Run("raw values", func(t *testing.T) {
		b := NewParser(Config{RawValues: true}, nil).Parse([]byte("a=%3C"), MediaURLEncoded, "PUT")
		require.False(t, b.Escaped)
		require.Equal(t, "<", b.Fields.String("a"))
	})
}

func TestMaterializeFailureIsRecorded(t *testing.T) {
	p := NewParser(Config{TempDir: filepath.Join(t.TempDir(), "missing")}, nil)
	raw := multipartBody(
		"Content-Disposition: form-data; name=\"f\"; filename=\"t.txt\"\r\nContent-Type: text/plain\r\n\r\nabc",
	)

	b := p.Parse([]byte(raw), "multipart/form-data; boundary="+testBoundary, "PUT")
	require.NoError(t, b.Err())
	entry, ok := b.Files["f"].First()
	require.True(t, ok)
	require.Contains(t, entry.Error, "cannot write into temp file")
	require.Empty(t, entry.TmpName)
}

func TestBoundary(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"multipart/form-data; boundary=abc", "abc", true},
		{`multipart/form-data; boundary="a b"`, "a b", true},
		{"multipart/form-data; BOUNDARY=abc; charset=utf-8", "abc", true},
		{"multipart/form-data", "", false},
		{"multipart/form-data; boundary=", "", false},
	}
	for _, tt := range tests {
		got, ok := Boundary(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("Boundary(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
