package impl

import (
	"context"

	"medchain/internal/domain/constants"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/service"
	"medchain/internal/errors"
)

// contractViews wraps the read-only contract methods the workflows consult.
type contractViews struct {
	ledger service.Ledger
	from   entity.Identity
}

func (v contractViews) isSupplier(ctx context.Context, id entity.Identity) (bool, error) {
	out, err := v.ledger.Call(ctx, v.from, constants.MethodSuppliers, id)
	if err != nil {
		return false, err
	}

	return boolOutput(constants.MethodSuppliers, out)
}

func (v contractViews) rawMaterialCount(ctx context.Context) (int64, error) {
	out, err := v.ledger.Call(ctx, v.from, constants.MethodRawMaterialCount)
	if err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, errors.New("rawMaterialCount returned nothing")
	}

	n, ok := entity.ToInt64(out[0])
	if !ok {
		return 0, errors.Errorf("rawMaterialCount returned %T", out[0])
	}

	return n, nil
}

func (v contractViews) equipmentAvailable(ctx context.Context, equipmentID int64) (bool, error) {
	out, err := v.ledger.Call(ctx, v.from, constants.MethodIsEquipmentAvailable, equipmentID)
	if err != nil {
		return false, err
	}

	return boolOutput(constants.MethodIsEquipmentAvailable, out)
}

func (v contractViews) userDetails(ctx context.Context, id entity.Identity) (entity.LedgerUser, error) {
	out, err := v.ledger.Call(ctx, v.from, constants.MethodUserDetails, id)
	if err != nil {
		return entity.LedgerUser{}, err
	}
	if len(out) < 3 {
		return entity.LedgerUser{}, errors.Errorf("userDetails returned %d values", len(out))
	}

	name, _ := out[0].(string)
	email, _ := out[1].(string)
	role, _ := out[2].(string)

	return entity.LedgerUser{Name: name, EmailID: email, Role: entity.ParseRole(role)}, nil
}

// displayName never fails: an unreadable or empty name becomes "Unknown".
func (v contractViews) displayName(ctx context.Context, id entity.Identity) string {
	user, err := v.userDetails(ctx, id)
	if err != nil || user.Name == "" {
		return constants.UnknownName
	}

	return user.Name
}

func boolOutput(method string, out []any) (bool, error) {
	if len(out) == 0 {
		return false, errors.Errorf("%s returned nothing", method)
	}

	b, ok := out[0].(bool)
	if !ok {
		return false, errors.Errorf("%s returned %T", method, out[0])
	}

	return b, nil
}

// authorize resolves the session's role and checks it against the capability table.
// The backend profile wins; without one the contract's user record is used.
func authorize(ctx context.Context, ledger service.Ledger, session entity.Session, action entity.Action) (entity.Role, error) {
	role, err := resolveRole(ctx, ledger, session)
	if err != nil {
		return "", err
	}
	if !role.Can(action) {
		return role, domainerrors.ErrForbidden.WithDetails(role.String() + " cannot " + action.String())
	}

	return role, nil
}

func resolveRole(ctx context.Context, ledger service.Ledger, session entity.Session) (entity.Role, error) {
	if session.Profile != nil && session.Profile.Role.IsValid() {
		return session.Profile.Role, nil
	}
	if ledger == nil || !session.Connected() {
		return "", domainerrors.ErrForbidden.WithDetails("no role for this session")
	}

	user, err := contractViews{ledger: ledger, from: session.Identity}.userDetails(ctx, session.Identity)
	if err != nil {
		return "", domainerrors.ErrForbidden.WithDetails("no role for this session")
	}
	if !user.Role.IsValid() {
		return "", domainerrors.ErrForbidden.WithDetails("account has no registered role")
	}

	return user.Role, nil
}
