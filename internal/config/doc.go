// Package config loads the bookshelf TOML configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/bookshelf/config.toml
//  3. If the file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing or blank, use defaults
//  5. BOOKSHELF_API_BIND, BOOKSHELF_LOG_LEVEL and BOOKSHELF_LOG_FILE override the result
//
// # TOML Format
//
//	api_bind = "127.0.0.1:5000"
//	request_timeout = "5s"
//	refresh_interval = "0s"
//	default_sort = "Title"
//	id_field = "ID"
//	sort_locale = "en"
//	columns = ["Title", "Author", "Category", "Publisher", "Format"]
//	log_level = "info"
//	log_file = "~/.local/state/bookshelf/bookshelf.log"
//
//	[[lookup]]
//	name = "Categories"
//	sort = "Category"
//
// Every field is optional. A [[lookup]] list replaces the default tables
// entirely. Tilde expansion is performed for the config path and log_file.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML syntax errors, an unparseable or non-positive
// request_timeout, a negative refresh_interval, and lookup entries without a name. A missing file is not
// an error.
package config
