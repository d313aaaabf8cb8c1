// Package config holds process-wide settings sourced from viper.
package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// OverwriteFiles controls whether existing markdown files should be overwritten
	OverwriteFiles bool
	// UpdateCovers forces re-downloading cover images even if they already exist
	UpdateCovers bool
	// IncludeSubtitle controls whether the subtitle is appended to the book title
	IncludeSubtitle bool
)

// InitConfig initializes the global configuration from viper.
func InitConfig() {
	viper.SetDefault("MarkdownOutputDir", "./markdown/")
	viper.SetDefault("JSONOutputDir", "./json/")
	viper.SetDefault("OverwriteFiles", false)
	viper.SetDefault("douban.include_subtitle", true)

	OverwriteFiles = viper.GetBool("OverwriteFiles")
	UpdateCovers = viper.GetBool("UpdateCovers")
	IncludeSubtitle = viper.GetBool("douban.include_subtitle")
}

// SetOverwriteFiles sets the OverwriteFiles flag.
func SetOverwriteFiles(overwrite bool) {
	OverwriteFiles = overwrite
}

// SetUpdateCovers sets the UpdateCovers flag.
func SetUpdateCovers(update bool) {
	UpdateCovers = update
}
