package service

import (
	"context"
	"net/url"

	"medchain/internal/domain/entity"
)

// MetadataRecorder reads and writes the REST metadata backend.
type MetadataRecorder interface {
	// Record performs exactly one HTTP write. Failures are BackendUnavailableError
	// carrying the write's TxHash.
	Record(ctx context.Context, write entity.MetadataWrite) (entity.StoredRecord, error)

	// Query lists records in backend order.
	Query(ctx context.Context, endpoint string, params url.Values) ([]entity.StoredRecord, error)
}

// RegisterInput is the sign-up form of a backend account.
type RegisterInput struct {
	Name            string
	Email           string
	Contact         string
	PhysicalAddress string
	Password        string
	Role            entity.Role
	WalletAddress   entity.Identity
}

// UserDirectory is the cookie-session account API of the backend.
type UserDirectory interface {
	Register(ctx context.Context, input RegisterInput) error
	Login(ctx context.Context, email, password string, wallet entity.Identity) (*entity.UserProfile, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*entity.UserProfile, error)
	All(ctx context.Context) ([]entity.UserProfile, error)
	ByWallet(ctx context.Context, wallet string) (*entity.UserProfile, error)
}
