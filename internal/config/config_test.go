package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const validConfig = `
owner: owner-1
treasury: treasury-1
venue: venue-1
create_fee: "100000000"
raise_target: "5000000000"
max_curve_supply: "1000000000000000"
venue_allocation: "200000000000000"
initial_price: "10000000000"
slope: "7"
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, uint64(DefaultPlatformFeeBp), cfg.PlatformFeeBp)
	assert.Equal(t, uint64(DefaultCreatorFeeBp), cfg.CreatorFeeBp)
	assert.Equal(t, 24, cfg.EmergencyCooldownHours)
	assert.Equal(t, 48, cfg.TreasuryDelayHours)

	assert.Equal(t, uint64(5_000_000_000), MustAmount(cfg.RaiseTarget).Uint64())
}

func TestLoadConfigMissingOwner(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
treasury: treasury-1
venue: venue-1
create_fee: "1"
raise_target: "1"
max_curve_supply: "1"
venue_allocation: "1"
initial_price: "1"
slope: "0"
`))
	assert.ErrorContains(t, err, "owner")
}

func TestLoadConfigFeeBounds(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, validConfig+`
platform_fee_bp: 9000
creator_fee_bp: 1001
`))
	assert.ErrorContains(t, err, "10000")
}

func TestLoadConfigBadAmount(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
owner: owner-1
treasury: treasury-1
venue: venue-1
create_fee: "not-a-number"
raise_target: "1"
max_curve_supply: "1"
venue_allocation: "1"
initial_price: "1"
slope: "0"
`))
	assert.ErrorContains(t, err, "create_fee")
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount("123456789012345678901234567890")
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234567890", amount.Dec())

	_, err = ParseAmount("")
	assert.Error(t, err)
}
