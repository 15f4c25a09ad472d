package parquetio

import (
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v11/parquet"
	"github.com/apache/arrow/go/v11/parquet/compress"
	"go.uber.org/zap"
)

const DefaultCreatedBy = "pqnest"

// WriterOpts configures the engine's file writer.  The zero value selects
// uncompressed pages of the engine's default size without dictionary
// encoding.
type WriterOpts struct {
	Compression  string      `yaml:"compression"`
	DataPageSize int64       `yaml:"data_page_size"`
	Dictionary   bool        `yaml:"dictionary"`
	BatchSize    int         `yaml:"batch_size"`
	CreatedBy    string      `yaml:"created_by"`
	Logger       *zap.Logger `yaml:"-"`
}

type ReaderOpts struct {
	BatchSize int
	Logger    *zap.Logger
}

var codecs = map[string]compress.Compression{
	"":             compress.Codecs.Uncompressed,
	"none":         compress.Codecs.Uncompressed,
	"uncompressed": compress.Codecs.Uncompressed,
	"snappy":       compress.Codecs.Snappy,
	"gzip":         compress.Codecs.Gzip,
	"zstd":         compress.Codecs.Zstd,
	"brotli":       compress.Codecs.Brotli,
}

// ParseCompression returns the engine codec named s.
func ParseCompression(s string) (compress.Compression, error) {
	c, ok := codecs[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown compression %q (must be none, snappy, gzip, zstd, or brotli)", s)
	}
	return c, nil
}

func (o WriterOpts) properties() (*parquet.WriterProperties, error) {
	codec, err := ParseCompression(o.Compression)
	if err != nil {
		return nil, err
	}
	createdBy := o.CreatedBy
	if createdBy == "" {
		createdBy = DefaultCreatedBy
	}
	props := []parquet.WriterProperty{
		parquet.WithCompression(codec),
		parquet.WithDictionaryDefault(o.Dictionary),
		parquet.WithCreatedBy(createdBy),
	}
	if o.DataPageSize > 0 {
		props = append(props, parquet.WithDataPageSize(o.DataPageSize))
	}
	return parquet.NewWriterProperties(props...), nil
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
