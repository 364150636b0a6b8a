package impl

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	deliverycontext "medchain/internal/delivery/context"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/service"
	"medchain/internal/errors"
	"medchain/internal/usecase"

	"go.uber.org/fx"
)

type sessionService struct {
	wallet service.WalletSession
	users  service.UserDirectory
	logger *slog.Logger
}

// SessionParams holds dependencies for the session use case, injected by Fx
type SessionParams struct {
	fx.In

	Wallet service.WalletSession
	Users  service.UserDirectory
	Logger *slog.Logger
}

// NewSessionService creates the session use case
func NewSessionService(params SessionParams) usecase.SessionUsecase {
	return &sessionService{
		wallet: params.Wallet,
		users:  params.Users,
		logger: params.Logger,
	}
}

func (s *sessionService) Current(ctx context.Context) (*usecase.SessionView, error) {
	session := s.wallet.Snapshot()
	if !session.Connected() {
		return &usecase.SessionView{}, nil
	}

	if session.Profile == nil {
		profile, err := s.users.Me(ctx)
		switch {
		case err == nil && session.Identity.Equal(profile.WalletAddress):
			// A switch while Me was in flight leaves the new account anonymous.
			if s.wallet.SetProfileFor(session.Identity, profile) {
				session.Profile = profile
			}
		case err == nil:
			deliverycontext.GetLoggerOrDefault(ctx, s.logger).Debug("Backend session belongs to another wallet",
				slog.String("identity", session.Identity.String()),
				slog.String("profile_wallet", profile.WalletAddress),
			)
		case errors.Is(err, domainerrors.ErrNotLoggedIn):
			// anonymous
		default:
			return nil, err
		}
	}

	return s.view(ctx, session), nil
}

func (s *sessionService) SwitchAccount(ctx context.Context, address string) (*usecase.SessionView, error) {
	id, err := entity.ParseIdentity(address)
	if err != nil {
		return nil, err
	}
	if err := s.wallet.Switch(ctx, id); err != nil {
		return nil, err
	}

	return s.view(ctx, s.wallet.Snapshot()), nil
}

func (s *sessionService) Register(ctx context.Context, input usecase.RegisterInput) error {
	id, ok := s.wallet.CurrentIdentity()
	if !ok {
		return domainerrors.ErrWalletUnavailable
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	switch {
	case input.Name == "":
		return domainerrors.Validation("name is required")
	case input.Password == "":
		return domainerrors.Validation("password is required")
	case !input.Role.IsValid() || input.Role == entity.RoleSuperAdmin:
		return domainerrors.Validation("role %q cannot be registered", input.Role)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return domainerrors.Validation("invalid email %q", input.Email)
	}

	if err := s.users.Register(ctx, service.RegisterInput{
		Name:            input.Name,
		Email:           input.Email,
		Contact:         input.Contact,
		PhysicalAddress: input.PhysicalAddress,
		Password:        input.Password,
		Role:            input.Role,
		WalletAddress:   id,
	}); err != nil {
		return err
	}

	deliverycontext.GetLoggerOrDefault(ctx, s.logger).Info("Account registered",
		slog.String("identity", id.String()),
		slog.String("role", input.Role.String()),
	)

	return nil
}

func (s *sessionService) Login(ctx context.Context, email, password string) (*usecase.SessionView, error) {
	id, ok := s.wallet.CurrentIdentity()
	if !ok {
		return nil, domainerrors.ErrWalletUnavailable
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domainerrors.ErrInvalidCredentials.WithDetails("email and password are required")
	}

	profile, err := s.users.Login(ctx, email, password, id)
	if err != nil {
		return nil, err
	}
	if profile.WalletAddress != "" && !id.Equal(profile.WalletAddress) {
		return nil, domainerrors.Validation("account is bound to wallet %s, connected wallet is %s", profile.WalletAddress, id)
	}
	if profile.WalletAddress == "" {
		profile.WalletAddress = id.String()
	}
	if !s.wallet.SetProfileFor(id, profile) {
		return nil, domainerrors.ErrAccountChanged.WithDetails("logged in as " + id.String())
	}

	return s.view(ctx, s.wallet.Snapshot()), nil
}

func (s *sessionService) Logout(ctx context.Context) error {
	s.wallet.SetProfile(nil)

	return s.users.Logout(ctx)
}

func (s *sessionService) view(ctx context.Context, session entity.Session) *usecase.SessionView {
	view := &usecase.SessionView{
		Connected: session.Connected(),
		Identity:  session.Identity,
		Profile:   session.Profile,
	}
	if !session.Connected() {
		return view
	}

	ledger, _ := s.wallet.LedgerHandle()
	if role, err := resolveRole(ctx, ledger, session); err == nil {
		view.Role = role
		view.Actions = role.Actions()
	}

	return view
}
