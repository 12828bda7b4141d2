package protocol

import "github.com/brandon-salgado205n/DeFi-Builder-Game/crypto"

// AccessControl tracks the owner identity, the provider set, and the
// global pause flag. The owner is always a provider and cannot be
// removed through the provider-removal path.
//
// AccessControl is not safe for concurrent use on its own; the Service
// serializes all access to it.
type AccessControl struct {
	owner     crypto.Address
	providers map[string]bool
	paused    bool
}

// NewAccessControl creates access-control state with the given owner,
// who starts as the sole provider.
func NewAccessControl(owner crypto.Address) *AccessControl {
	ac := &AccessControl{
		owner:     owner,
		providers: make(map[string]bool),
	}
	ac.providers[owner.String()] = true
	return ac
}

// Owner returns the current owner address.
func (ac *AccessControl) Owner() crypto.Address {
	return ac.owner
}

// IsOwner reports whether addr is the current owner.
func (ac *AccessControl) IsOwner(addr crypto.Address) bool {
	return ac.owner.Equal(addr)
}

// IsProvider reports whether addr is a permissioned provider.
func (ac *AccessControl) IsProvider(addr crypto.Address) bool {
	return ac.providers[addr.String()]
}

// Paused reports the global pause flag.
func (ac *AccessControl) Paused() bool {
	return ac.paused
}

// TransferOwnership installs a new owner. The new owner joins the
// provider set; the previous owner remains an ordinary provider until
// removed explicitly.
func (ac *AccessControl) TransferOwnership(newOwner crypto.Address) {
	ac.owner = newOwner
	ac.providers[newOwner.String()] = true
}

// AddProvider adds addr to the provider set. Returns false if addr was
// already a provider (idempotent no-op).
func (ac *AccessControl) AddProvider(addr crypto.Address) bool {
	key := addr.String()
	if ac.providers[key] {
		return false
	}
	ac.providers[key] = true
	return true
}

// RemoveProvider removes addr from the provider set. Removing the owner
// or a non-provider is a silent no-op; returns whether a removal
// happened.
func (ac *AccessControl) RemoveProvider(addr crypto.Address) bool {
	if ac.owner.Equal(addr) {
		return false
	}
	key := addr.String()
	if !ac.providers[key] {
		return false
	}
	delete(ac.providers, key)
	return true
}

// Pause sets the pause flag. Fails if already paused.
func (ac *AccessControl) Pause() error {
	if ac.paused {
		return ErrAlreadyPaused
	}
	ac.paused = true
	return nil
}

// Unpause clears the pause flag unconditionally.
func (ac *AccessControl) Unpause() {
	ac.paused = false
}

func (ac *AccessControl) requireOwner(addr crypto.Address) error {
	if !ac.IsOwner(addr) {
		return ErrNotOwner
	}
	return nil
}

func (ac *AccessControl) requireProvider(addr crypto.Address) error {
	if !ac.IsProvider(addr) {
		return ErrNotProvider
	}
	return nil
}

func (ac *AccessControl) requireActive() error {
	if ac.paused {
		return ErrPaused
	}
	return nil
}
