package domain

import (
	"fmt"
	"strings"
)

// DefaultPort is the SSH port used when an account does not name one
const DefaultPort = 22

// Account represents one SFTP login and the folders watched under it
type Account struct {
	Name     string   `json:"name" yaml:"name" validate:"required"`
	Host     string   `json:"host" yaml:"host" validate:"required,hostname_rfc1123|ip"`
	Port     int      `json:"port" yaml:"port" validate:"min=1,max=65535"`
	Username string   `json:"username" yaml:"username" validate:"required"`
	Secret   Secret   `json:"-" yaml:"password" validate:"required"`
	Folders  []Folder `json:"folders" yaml:"folders" validate:"required,min=1,dive"`
}

// Folder is a named remote directory inside an account
type Folder struct {
	Label   string   `json:"label" yaml:"label" validate:"required"`
	Path    string   `json:"path" yaml:"path" validate:"required"`
	Filters []string `json:"filters,omitempty" yaml:"filters,omitempty" validate:"omitempty,dive,required"`

	// Unconfigured marks a placeholder for a folder filter that matched
	// nothing on the account. Its label is the filter text.
	Unconfigured bool `json:"-" yaml:"-"`
}

// FolderTask is a single unit of inspection work.
// A folder with name-prefix filters expands into one task per prefix.
type FolderTask struct {
	Account string `json:"account"`
	Label   string `json:"label"`
	Path    string `json:"path"`
	Prefix  string `json:"prefix,omitempty"`

	Unconfigured bool `json:"unconfigured,omitempty"`
}

// Address returns host:port suitable for dialing
func (a Account) Address() string {
	port := a.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("%s:%d", a.Host, port)
}

// Tasks expands the account's folders into inspection tasks in declaration order
func (a Account) Tasks() []FolderTask {
	tasks := make([]FolderTask, 0, len(a.Folders))
	for _, f := range a.Folders {
		tasks = append(tasks, f.Tasks(a.Name)...)
	}
	return tasks
}

// Tasks expands a single folder. Blank filters are ignored. Prefix tasks are
// labelled with the lowercased prefix.
func (f Folder) Tasks(account string) []FolderTask {
	if f.Unconfigured {
		return []FolderTask{{Account: account, Label: f.Label, Unconfigured: true}}
	}

	var tasks []FolderTask
	for _, prefix := range f.Filters {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			continue
		}
		tasks = append(tasks, FolderTask{
			Account: account,
			Label:   fmt.Sprintf("%s - %s", f.Label, strings.ToLower(prefix)),
			Path:    f.Path,
			Prefix:  prefix,
		})
	}
	if len(tasks) == 0 {
		tasks = append(tasks, FolderTask{Account: account, Label: f.Label, Path: f.Path})
	}
	return tasks
}

// String implements fmt.Stringer without exposing the secret
func (a Account) String() string {
	return fmt.Sprintf("%s (%s@%s, %d folders)", a.Name, a.Username, a.Address(), len(a.Folders))
}
