package cmd

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/doubanmeta/cmd/cover"
	"github.com/lepinkainen/doubanmeta/cmd/identify"
)

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("doubanmeta"))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestCLIDefaults(t *testing.T) {
	cli, _ := parseCLI(t, "identify", "--title", "三体")

	assert.False(t, cli.Overwrite)
	assert.False(t, cli.UpdateCovers)
	assert.True(t, cli.Datasette)
	assert.Equal(t, "./doubanmeta.db", cli.DatasetteDB)
	assert.Equal(t, "./cache.db", cli.CacheDBFile)
	assert.Equal(t, "720h", cli.CacheTTL)
}

func TestIdentifyCommandDispatch(t *testing.T) {
	orig := runIdentify
	defer func() { runIdentify = orig }()

	var got identify.Params
	runIdentify = func(p identify.Params) error {
		got = p
		return nil
	}

	cli, ctx := parseCLI(t,
		"identify",
		"--title", "三体",
		"--author", "刘慈欣",
		"--isbn", "9787536692930",
		"--no-interactive",
		"--json",
	)
	require.NoError(t, ctx.Run())

	assert.Equal(t, "identify", ctx.Command())
	assert.Equal(t, "三体", got.Title)
	assert.Equal(t, []string{"刘慈欣"}, got.Authors)
	assert.Equal(t, "9787536692930", got.ISBN)
	assert.Equal(t, 5, got.MaxResults)
	assert.Equal(t, "douban", got.OutputDir)
	assert.False(t, got.Interactive)
	assert.True(t, got.WriteJSON)
	assert.True(t, got.DownloadCover)
	_ = cli
}

func TestCoverCommandDispatch(t *testing.T) {
	orig := runCover
	defer func() { runCover = orig }()

	var got cover.Params
	runCover = func(p cover.Params) error {
		got = p
		return nil
	}

	_, ctx := parseCLI(t,
		"cover",
		"--douban-id", "2567698",
		"--output", "/tmp/covers",
		"--max-width", "500",
	)
	require.NoError(t, ctx.Run())

	assert.Equal(t, "cover", ctx.Command())
	assert.Equal(t, "2567698", got.DoubanID)
	assert.Equal(t, "/tmp/covers", got.OutputDir)
	assert.Equal(t, 500, got.MaxWidth)
}

func TestCacheInvalidateCommandParses(t *testing.T) {
	_, ctx := parseCLI(t, "cache", "invalidate", "search")
	assert.Equal(t, "cache invalidate <source>", ctx.Command())
}

func TestUpdateGlobalConfig(t *testing.T) {
	cli, _ := parseCLI(t, "--overwrite", "--update-covers", "--browser", "identify", "-t", "x")
	updateGlobalConfig(cli)

	assert.True(t, cli.Overwrite)
	assert.True(t, cli.UpdateCovers)
	assert.True(t, cli.Browser)
}
