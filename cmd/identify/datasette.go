package identify

import (
	"github.com/spf13/viper"

	"github.com/lepinkainen/doubanmeta/internal/datastore"
	"github.com/lepinkainen/doubanmeta/internal/metadata"
)

// storeBook writes the identified record to the configured datastore:
// a remote Datasette instance when datasette.remote is set, the local
// SQLite database otherwise.
func storeBook(book *metadata.Book) error {
	var store datastore.Store
	if remote := viper.GetString("datasette.remote"); remote != "" {
		store = datastore.NewDatasetteClient(remote, datastore.DefaultDatabase, viper.GetString("datasette.token"))
	} else {
		store = datastore.NewSQLiteStore(viper.GetString("datasette.dbfile"))
	}

	return datastore.StoreBooks(store, []*metadata.Book{book})
}
