package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v2"

	"dropwatch/pkg/contracts/domain"
)

var (
	blockSeparator = regexp.MustCompile(`-{5,}`)
	hostToken      = regexp.MustCompile(`[A-Za-z0-9.-]+`)
	portSuffix     = regexp.MustCompile(`:(\d{2,5})\b`)
	firstDigits    = regexp.MustCompile(`\d+`)
	nonLetters     = regexp.MustCompile(`[^a-z]`)
)

// SkippedBlock describes a credentials block that did not yield an account
type SkippedBlock struct {
	Name   string
	Reason string
}

// LoadAccounts reads account definitions from path. Files ending in .yaml
// or .yml hold a YAML list; anything else uses the block text format.
func LoadAccounts(path string) ([]domain.Account, []SkippedBlock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open credentials file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseAccountsYAML(f)
	default:
		return ParseAccounts(f)
	}
}

type accountsFile struct {
	Accounts []domain.Account `yaml:"accounts"`
}

func parseAccountsYAML(r io.Reader) ([]domain.Account, []SkippedBlock, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read credentials file: %w", err)
	}
	var doc accountsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse credentials yaml: %w", err)
	}

	var accounts []domain.Account
	var skipped []SkippedBlock
	for _, acct := range doc.Accounts {
		if acct.Port == 0 {
			acct.Port = domain.DefaultPort
		}
		if reason := missingFields(acct); reason != "" {
			skipped = append(skipped, SkippedBlock{Name: acct.Name, Reason: reason})
			continue
		}
		if len(acct.Folders) == 0 {
			acct.Folders = []domain.Folder{{Label: "Root", Path: "/"}}
		}
		accounts = append(accounts, acct)
	}
	return accounts, skipped, nil
}

// ParseAccounts reads the block text format.
//
// Blocks are separated by a line of five or more dashes. The first non-empty
// line of a block is the account name; following lines are "key: value".
// host, username, password and port are connection settings. Any other key
// names a folder; its value holds the path and optional quoted file-name
// prefixes. Lines starting with "--" are comments. A line without a colon
// adds quoted prefixes to the previous folder.
func ParseAccounts(r io.Reader) ([]domain.Account, []SkippedBlock, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read credentials file: %w", err)
	}

	var accounts []domain.Account
	var skipped []SkippedBlock
	for _, block := range blockSeparator.Split(string(data), -1) {
		acct, ok, reason := parseBlock(block)
		if !ok {
			if acct.Name != "" {
				skipped = append(skipped, SkippedBlock{Name: acct.Name, Reason: reason})
			}
			continue
		}
		accounts = append(accounts, acct)
	}
	return accounts, skipped, nil
}

func parseBlock(block string) (domain.Account, bool, string) {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(block))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return domain.Account{}, false, ""
	}

	acct := domain.Account{Name: lines[0]}
	var last *domain.Folder

	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "--") {
			continue
		}

		rawKey, rawValue, found := strings.Cut(line, ":")
		if !found {
			if last != nil {
				_, extra := parseFolderValue(line)
				last.Filters = appendUnique(last.Filters, extra...)
			}
			continue
		}

		value := cleanValue(rawValue)
		switch normaliseKey(rawKey) {
		case "host", "hosturl", "ftpurl", "url":
			acct.Host, acct.Port = parseHost(value, acct.Port)
		case "username", "user":
			acct.Username = value
		case "password":
			acct.Secret = domain.NewSecret(value)
		case "port":
			if digits := firstDigits.FindString(value); digits != "" {
				acct.Port, _ = strconv.Atoi(digits)
			}
		case "folders", "locations":
			continue
		case "folder":
			path, filters := parseFolderValue(rawValue)
			acct.Folders = append(acct.Folders, domain.Folder{Label: "Folder", Path: path, Filters: filters})
			last = &acct.Folders[len(acct.Folders)-1]
		default:
			path, filters := parseFolderValue(rawValue)
			acct.Folders = append(acct.Folders, domain.Folder{
				Label:   deriveFolderLabel(acct.Name, rawKey),
				Path:    path,
				Filters: filters,
			})
			last = &acct.Folders[len(acct.Folders)-1]
		}
	}

	if acct.Port == 0 {
		acct.Port = domain.DefaultPort
	}
	if reason := missingFields(acct); reason != "" {
		return acct, false, reason
	}
	if len(acct.Folders) == 0 {
		acct.Folders = []domain.Folder{{Label: "Root", Path: "/"}}
	}
	return acct, true, ""
}

func missingFields(acct domain.Account) string {
	var missing []string
	if acct.Host == "" {
		missing = append(missing, "host")
	}
	if acct.Username == "" {
		missing = append(missing, "username")
	}
	if acct.Secret.IsZero() {
		missing = append(missing, "password")
	}
	if len(missing) == 0 {
		return ""
	}
	return "missing " + strings.Join(missing, ", ")
}

// parseHost accepts "host", "host:port" or "sftp://host:port/"
func parseHost(value string, port int) (string, int) {
	if i := strings.Index(value, "://"); i >= 0 {
		value = value[i+3:]
	}
	if m := portSuffix.FindStringSubmatch(value); m != nil {
		port, _ = strconv.Atoi(m[1])
	}
	return hostToken.FindString(value), port
}

func normaliseKey(raw string) string {
	return nonLetters.ReplaceAllString(strings.ToLower(raw), "")
}

// cleanValue returns the first quoted segment verbatim, or the value with
// any inline # comment removed.
func cleanValue(raw string) string {
	v := strings.TrimSpace(raw)
	if seg, ok := firstQuoted(v); ok {
		return strings.TrimSpace(seg)
	}
	if i := strings.Index(v, "#"); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// parseFolderValue splits a folder value into its path and prefix filters.
// The first quoted segment containing a slash is the path; other quoted
// segments are filters. Without a quoted path the whole value is the path.
func parseFolderValue(raw string) (string, []string) {
	value := strings.TrimSpace(raw)
	segments := quotedSegments(value)

	path := ""
	for _, seg := range segments {
		if strings.Contains(seg, "/") {
			path = seg
			break
		}
	}
	if path == "" {
		path = value
		if len(segments) == 0 {
			if i := strings.Index(path, "#"); i >= 0 {
				path = strings.TrimSpace(path[:i])
			}
		} else if quoteStart := strings.IndexAny(path, `'"`); quoteStart >= 0 {
			path = strings.TrimSpace(path[:quoteStart])
		}
	}

	var filters []string
	for _, seg := range segments {
		if seg != path {
			filters = appendUnique(filters, seg)
		}
	}

	if path == "" {
		path = "/"
	}
	return path, filters
}

func deriveFolderLabel(account, rawKey string) string {
	key := strings.TrimSpace(rawKey)
	if key == "" {
		return "Folder"
	}

	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(account))
	label := strings.Trim(pattern.ReplaceAllString(key, ""), " _-:")
	if label == "" {
		label = key
	}

	label = strings.NewReplacer("_", " ", "-", " ").Replace(label)
	r, size := utf8.DecodeRuneInString(label)
	if r == utf8.RuneError {
		return "Folder"
	}
	return string(unicode.ToUpper(r)) + label[size:]
}

func firstQuoted(s string) (string, bool) {
	for i := 0; i < len(s); i++ {
		q := s[i]
		if q != '\'' && q != '"' {
			continue
		}
		if end := strings.IndexByte(s[i+1:], q); end >= 0 {
			return s[i+1 : i+1+end], true
		}
	}
	return "", false
}

func quotedSegments(s string) []string {
	var segments []string
	for i := 0; i < len(s); i++ {
		q := s[i]
		if q != '\'' && q != '"' {
			continue
		}
		end := strings.IndexByte(s[i+1:], q)
		if end < 0 {
			continue
		}
		if seg := s[i+1 : i+1+end]; seg != "" {
			segments = append(segments, seg)
		}
		i += end + 1
	}
	return segments
}

// appendUnique appends values not already present, comparing case-insensitively
func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		dup := false
		for _, existing := range list {
			if strings.EqualFold(existing, v) {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, v)
		}
	}
	return list
}
