// Package entity contains the core business objects of the project.
package entity

import (
	"strings"

	domainerrors "medchain/internal/domain/errors"

	"github.com/ethereum/go-ethereum/common"
)

// Identity is a wallet address in lowercase 0x-prefixed hex form.
type Identity string

// ParseIdentity validates and normalizes a hex wallet address.
func ParseIdentity(s string) (Identity, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return "", domainerrors.Validation("invalid wallet address %q", s)
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}

	return Identity(strings.ToLower(s)), nil
}

// IdentityFromAddress converts a go-ethereum address.
func IdentityFromAddress(addr common.Address) Identity {
	return Identity(strings.ToLower(addr.Hex()))
}

// String returns the string representation of the Identity.
func (i Identity) String() string {
	return string(i)
}

// Address returns the go-ethereum address form.
func (i Identity) Address() common.Address {
	return common.HexToAddress(string(i))
}

// IsZero reports whether no identity is set.
func (i Identity) IsZero() bool {
	return i == ""
}

// Equal compares two addresses case-insensitively.
func (i Identity) Equal(other string) bool {
	return strings.EqualFold(string(i), strings.TrimSpace(other))
}

// UserProfile is the backend account bound to a wallet.
type UserProfile struct {
	ID              string `json:"_id,omitempty"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Contact         string `json:"contact,omitempty"`
	PhysicalAddress string `json:"userAddress,omitempty"`
	Role            Role   `json:"role"`
	WalletAddress   string `json:"walletAddress"`
}

// LedgerUser is the user record the contract keeps for an address.
type LedgerUser struct {
	Name    string
	EmailID string
	Role    Role
}

// Session is the acting party of one workflow instance: the connected wallet
// identity plus the backend profile when logged in.
type Session struct {
	Identity Identity
	Profile  *UserProfile
}

// Connected reports whether a wallet account is selected.
func (s Session) Connected() bool {
	return !s.Identity.IsZero()
}

// LoggedIn reports whether a backend profile is attached.
func (s Session) LoggedIn() bool {
	return s.Profile != nil
}

// ProfileMatchesWallet reports whether the logged-in profile belongs to the connected wallet.
// Without a profile there is nothing to contradict.
func (s Session) ProfileMatchesWallet() bool {
	if s.Profile == nil || s.Profile.WalletAddress == "" {
		return true
	}

	return s.Identity.Equal(s.Profile.WalletAddress)
}
