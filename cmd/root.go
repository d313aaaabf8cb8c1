// Package cmd wires the command line interface for doubanmeta.
package cmd

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/doubanmeta/cmd/cover"
	"github.com/lepinkainen/doubanmeta/cmd/identify"
	"github.com/lepinkainen/doubanmeta/internal/cache"
	"github.com/lepinkainen/doubanmeta/internal/config"
)

var (
	runIdentify = identify.RunWithParams
	runCover    = cover.RunWithParams
)

// CLI represents the complete command structure for the doubanmeta application
type CLI struct {
	// Global flags
	Overwrite    bool `help:"Overwrite existing markdown files when processing"`
	UpdateCovers bool `help:"Re-download cover images even if they already exist"`
	Browser      bool `help:"Fall back to a headless browser when Douban keeps refusing requests"`

	// Datasette flags
	Datasette   bool   `help:"Enable Datasette output" default:"true"`
	DatasetteDB string `help:"Path to SQLite database file" default:"./doubanmeta.db"`

	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file" default:"./cache.db"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 720h for 30 days)" default:"720h"`

	Identify IdentifyCmd `cmd:"" help:"Look up book metadata on Douban"`
	Cover    CoverCmd    `cmd:"" help:"Fetch a book cover image from Douban"`
	Cache    CacheCmd    `cmd:"" help:"Manage the response cache"`
}

// IdentifyCmd represents the identify command
type IdentifyCmd struct {
	Title         string   `short:"t" help:"Book title to search for"`
	Author        []string `short:"a" help:"Book author (repeatable)"`
	ISBN          string   `help:"ISBN to search for (beats title search when valid)"`
	DoubanID      string   `help:"Douban subject ID (skips the search entirely)"`
	MaxResults    int      `help:"Maximum number of candidates to fetch" default:"5"`
	Output        string   `short:"o" help:"Subdirectory under markdown output directory for book notes" default:"douban"`
	JSON          bool     `help:"Write data to JSON format"`
	JSONOutput    string   `help:"Path to JSON output file (defaults to json/douban.json)"`
	NoInteractive bool     `help:"Disable interactive candidate selection (auto-select best match)" default:"false"`
	NoCover       bool     `help:"Skip downloading the cover image" default:"false"`
}

// CoverCmd represents the cover command
type CoverCmd struct {
	ISBN     string   `help:"ISBN of the book"`
	DoubanID string   `help:"Douban subject ID of the book"`
	Title    string   `short:"t" help:"Book title (used when no identifier is available)"`
	Author   []string `short:"a" help:"Book author (repeatable)"`
	Note     string   `short:"n" help:"Path to an existing book note to read identifiers from"`
	Output   string   `short:"o" help:"Directory to save the cover into" default:"./covers"`
	MaxWidth int      `help:"Maximum cover width in pixels, larger images are scaled down" default:"1000"`
}

// CacheCmd represents the cache command and its subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Delete cached entries for a source (search, book, isbn, cover)"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("doubanmeta"),
		kong.Description("A tool to look up book metadata and covers from Douban."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetDefault("MarkdownOutputDir", "./markdown/")
	viper.SetDefault("JSONOutputDir", "./json/")
	viper.SetDefault("OverwriteFiles", false)

	// Datasette defaults
	viper.SetDefault("datasette.enabled", true)
	viper.SetDefault("datasette.dbfile", "./doubanmeta.db")

	// Cache defaults
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "720h") // 30 days

	// Douban defaults
	viper.SetDefault("douban.include_subtitle", true)

	viper.AutomaticEnv()
	if err := viper.BindEnv("douban.useragent", "DOUBAN_USER_AGENT"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
			os.Exit(0)
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	config.SetOverwriteFiles(cli.Overwrite)
	config.SetUpdateCovers(cli.UpdateCovers)

	viper.Set("datasette.enabled", cli.Datasette)
	viper.Set("datasette.dbfile", cli.DatasetteDB)

	viper.Set("cache.dbfile", cli.CacheDBFile)
	viper.Set("cache.ttl", cli.CacheTTL)

	viper.Set("douban.browser_fallback", cli.Browser)
}

// Run methods for each command

func (i *IdentifyCmd) Run() error {
	return runIdentify(identify.Params{
		Title:         i.Title,
		Authors:       i.Author,
		ISBN:          i.ISBN,
		DoubanID:      i.DoubanID,
		MaxResults:    i.MaxResults,
		OutputDir:     i.Output,
		WriteJSON:     i.JSON,
		JSONOutput:    i.JSONOutput,
		Interactive:   !i.NoInteractive, // Invert: default is interactive
		DownloadCover: !i.NoCover,
	})
}

func (c *CoverCmd) Run() error {
	return runCover(cover.Params{
		ISBN:      c.ISBN,
		DoubanID:  c.DoubanID,
		Title:     c.Title,
		Authors:   c.Author,
		NotePath:  c.Note,
		OutputDir: c.Output,
		MaxWidth:  c.MaxWidth,
	})
}

func initLogging() {
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: slog.LevelInfo,
	})

	slog.SetDefault(slog.New(handler))
}
