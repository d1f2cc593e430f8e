package dashboard

import (
	"embed"
	"io/fs"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

//go:embed views
var viewsFS embed.FS

// GetMigrationsFS returns the migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// GetViewsFS returns the template files rooted at the views directory
func GetViewsFS() (fs.FS, error) {
	return fs.Sub(viewsFS, "views")
}
