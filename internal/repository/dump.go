package repository

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	ErrDumpNotFound = eris.New("dump file not found")
	ErrUndecodable  = eris.New("dump is neither CP949 nor UTF-8")
)

// DumpEncoding is one candidate text encoding for a dump file.
type DumpEncoding struct {
	Name     string
	Encoding encoding.Encoding
}

// DefaultDumpEncodings are tried in order: the Windows Korean code page the
// scraper writes on a Korean Windows host, then UTF-8 with an optional BOM.
var DefaultDumpEncodings = []DumpEncoding{
	{Name: "cp949", Encoding: korean.EUCKR},
	{Name: "utf-8-sig", Encoding: unicode.UTF8BOM},
}

// DumpRepository defines the contract for loading scrape dumps.
// This is the interface you would mock for testing.
type DumpRepository interface {
	Fetch(ctx context.Context, path string) (io.Reader, error)
}

// fileDumpRepository reads dumps from the local filesystem.
type fileDumpRepository struct {
	encodings []DumpEncoding
}

// NewDumpRepository creates and returns a new repository instance.
func NewDumpRepository() DumpRepository {
	return &fileDumpRepository{encodings: DefaultDumpEncodings}
}

// Fetch reads the file at path and returns its text decoded to UTF-8.
func (r *fileDumpRepository) Fetch(ctx context.Context, path string) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(ErrDumpNotFound, "repository: %s", path)
		}
		return nil, eris.Wrapf(err, "repository: read %s", path)
	}

	text, name, err := DecodeDump(raw, r.encodings)
	if err != nil {
		return nil, eris.Wrapf(err, "repository: decode %s", path)
	}
	zap.L().Debug("dump decoded",
		zap.String("path", path),
		zap.String("encoding", name),
		zap.Int("bytes", len(raw)),
	)
	return strings.NewReader(text), nil
}

// DecodeDump decodes raw with the first encoding that accepts it and returns
// the text and the encoding name.
func DecodeDump(raw []byte, encodings []DumpEncoding) (string, string, error) {
	for _, enc := range encodings {
		text, ok := strictDecode(raw, enc.Encoding)
		if ok {
			return text, enc.Name, nil
		}
	}
	return "", "", ErrUndecodable
}

// strictDecode accepts raw only if decoding and re-encoding it reproduces
// the input bytes, so bytes a lenient decoder would silently replace with
// U+FFFD reject the candidate. A UTF-8 BOM is ignored in the comparison.
func strictDecode(raw []byte, enc encoding.Encoding) (string, bool) {
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil || !utf8.Valid(out) {
		return "", false
	}
	back, _, err := transform.Bytes(enc.NewEncoder(), out)
	if err != nil {
		return "", false
	}
	if !bytes.Equal(bytes.TrimPrefix(back, utf8BOM), bytes.TrimPrefix(raw, utf8BOM)) {
		return "", false
	}
	return string(out), true
}
