package gpkg

import "errors"

var (
	// ErrDatabaseOpen reports that the GeoPackage file is missing, not
	// readable, or not a SQLite database.
	ErrDatabaseOpen = errors.New("cannot open geopackage database")

	// ErrQuery reports a failed query against the GeoPackage schema,
	// typically a missing table or column.
	ErrQuery = errors.New("geopackage query failed")
)
