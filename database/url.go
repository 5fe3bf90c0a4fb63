package database

import (
	"net/url"
	"strings"
)

// ConstructDatabaseURL combines a base URL with an optional database name.
// A blank name returns the base URL untouched. sslmode=disable is appended
// unless the URL already chooses an sslmode.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if strings.TrimSpace(databaseName) == "" {
		return baseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" {
		// Not a URL (e.g. keyword/value DSN); append the dbname keyword instead
		return strings.TrimSpace(baseURL) + " dbname=" + databaseName
	}

	u.Path = "/" + databaseName

	query := u.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", "disable")
	}
	u.RawQuery = query.Encode()

	return u.String()
}
