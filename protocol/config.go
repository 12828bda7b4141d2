package protocol

import "time"

// DefaultCooldown is the initial cooldown window applied per address
// and per action class until the owner reconfigures it.
const DefaultCooldown = 60 * time.Second

// LedgerConfig provides configuration parameters for the ledger core.
type LedgerConfig struct {
	// Cooldown is the window applied independently per action class
	// (submission, decryption request) for each address.
	Cooldown time.Duration
}

// DefaultLedgerConfig returns a config with default parameters.
func DefaultLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		Cooldown: DefaultCooldown,
	}
}
