package identify

import (
	"github.com/lepinkainen/doubanmeta/internal/config"
	"github.com/lepinkainen/doubanmeta/internal/fileutil"
	"github.com/lepinkainen/doubanmeta/internal/metadata"
)

func writeBookToJSON(book *metadata.Book, filename string) error {
	_, err := fileutil.WriteJSONFile(book, filename, config.OverwriteFiles)
	return err
}
