package writerflags

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*Flags, error) {
	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return &f, f.Init()
}

func TestDefaults(t *testing.T) {
	f, err := parse(t)
	require.NoError(t, err)
	opts := f.Options()
	assert.Equal(t, "snappy", opts.Compression)
	assert.EqualValues(t, 1<<20, opts.DataPageSize)
	assert.Equal(t, 1024, opts.BatchSize)
	assert.False(t, opts.Dictionary)
}

func TestFlags(t *testing.T) {
	f, err := parse(t, "-compression", "zstd", "-pagesize", "64KiB", "-dictionary")
	require.NoError(t, err)
	assert.Equal(t, "zstd", f.Compression)
	assert.EqualValues(t, 64<<10, f.DataPageSize)
	assert.True(t, f.Dictionary)

	_, err = parse(t, "-pagesize", "lots")
	assert.Error(t, err)
	_, err = parse(t, "-compression", "lzo")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "writer.yaml")
	config := "compression: gzip\npage_size: 8KiB\ndictionary: true\nbatch_size: 64\ncreated_by: test\n"
	require.NoError(t, os.WriteFile(path, []byte(config), 0644))
	f, err := parse(t, "-config", path)
	require.NoError(t, err)
	assert.Equal(t, "gzip", f.Compression)
	assert.EqualValues(t, 8<<10, f.DataPageSize)
	assert.True(t, f.Dictionary)
	assert.Equal(t, 64, f.BatchSize)
	assert.Equal(t, "test", f.CreatedBy)

	f, err = parse(t, "-config", path, "-compression", "none", "-pagesize", "2KiB")
	require.NoError(t, err)
	assert.Equal(t, "none", f.Compression)
	assert.EqualValues(t, 2<<10, f.DataPageSize)
	assert.Equal(t, 64, f.BatchSize)
}
