// Package config loads dropwatch settings and account definitions.
//
// # Configuration Sources
//
// Settings are resolved in this order, later sources winning:
//
//	1. Default() values
//	2. A YAML file (--config, DROPWATCH_CONFIG, or dropwatch.yaml next to the binary)
//	3. Environment variables prefixed with DROPWATCH_
//
// Environment variables follow the struct layout:
//
//	DROPWATCH_SCAN_WORKERS=8
//	DROPWATCH_SCAN_READ_TIMEOUT=90s
//	DROPWATCH_LOGGING_LEVEL=debug
//	DROPWATCH_REPORT_FORMAT=csv
//
// # Accounts
//
// Accounts come from a credentials file, by default credentials.txt. Each
// block is separated by a dashed line:
//
//	Acme
//	host: sftp.acme.example:2222
//	username: reports
//	password: "p@ss#word"
//	Inbound: '/data/in' 'INV_' 'PO_'
//	Archive: /data/archive
//	-----
//
// A file ending in .yaml or .yml is read as a YAML document with an
// "accounts" list instead.
//
// # Path Management
//
// Output locations are resolved by GetPaths relative to the base directory,
// which defaults to the executable's directory.
package config
