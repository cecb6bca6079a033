package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropwatch/pkg/contracts/domain"
)

func TestFilterAccounts(t *testing.T) {
	accounts := []domain.Account{
		account("Wizard Logistics", folder("Inbound", "/in"), folder("Outbound", "/out")),
		account("Acme", folder("Inbound", "/in")),
		account("Acme Wizardry", folder("Reports", "/r")),
	}

	names := func(accts []domain.Account) []string {
		var out []string
		for _, a := range accts {
			out = append(out, a.Name)
		}
		return out
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filter", want: []string{"Wizard Logistics", "Acme", "Acme Wizardry"}},
		{name: "account substring", filter: Filter{Account: "acme"}, want: []string{"Acme", "Acme Wizardry"}},
		{name: "skip list", filter: Filter{Skip: []string{"WIZARD"}}, want: []string{"Acme"}},
		{name: "blank skip ignored", filter: Filter{Skip: []string{" "}}, want: []string{"Wizard Logistics", "Acme", "Acme Wizardry"}},
		{name: "folder filter keeps accounts without match", filter: Filter{Folder: "bound"}, want: []string{"Wizard Logistics", "Acme", "Acme Wizardry"}},
		{name: "combined", filter: Filter{Account: "acme", Skip: []string{"wizardry"}, Folder: "in"}, want: []string{"Acme"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(FilterAccounts(accounts, tt.filter, quietLogger())))
		})
	}
}

func TestFilterAccountsNarrowsFolders(t *testing.T) {
	accounts := []domain.Account{account("Wizard", folder("Inbound", "/in"), folder("Outbound", "/out"))}

	got := FilterAccounts(accounts, Filter{Folder: "OUT"}, nil)

	assert.Len(t, got, 1)
	assert.Equal(t, []domain.Folder{folder("Outbound", "/out")}, got[0].Folders)
	assert.Len(t, accounts[0].Folders, 2, "input accounts are not modified")
}

func TestFilterAccountsMarksUnconfiguredFolder(t *testing.T) {
	accounts := []domain.Account{account("Wheels", folder("Italy Inventory", "/inv/it"))}

	got := FilterAccounts(accounts, Filter{Folder: "Italy Booking"}, quietLogger())

	require.Len(t, got, 1)
	require.Len(t, got[0].Folders, 1)
	assert.True(t, got[0].Folders[0].Unconfigured)
	assert.Equal(t, "Italy Booking", got[0].Folders[0].Label)
}
