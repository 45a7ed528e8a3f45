package domain

import "fmt"

// Role is the closed set of account roles.
type Role uint8

const (
	RoleUser Role = iota
	RoleAdmin
	RoleSupport
	RoleAccounting
)

var roleNames = [...]string{"USER", "ADMIN", "SUPPORT", "ACCOUNTING"}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

func (r Role) Valid() bool { return int(r) < len(roleNames) }

// CanApprove reports whether the role may move money: approving credits or
// debits a balance.
func (r Role) CanApprove() bool { return r == RoleAdmin || r == RoleAccounting }

// CanReject reports whether the role may close a request without touching
// any balance.
func (r Role) CanReject() bool { return r.CanApprove() || r == RoleSupport }

func ParseRole(s string) (Role, error) {
	for i, n := range roleNames {
		if n == s {
			return Role(i), nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// TxStatus is the settlement state of a deposit or withdrawal. PENDING is
// the only non-terminal state.
type TxStatus uint8

const (
	TxStatusPending TxStatus = iota
	TxStatusApproved
	TxStatusRejected
)

var txStatusNames = [...]string{"PENDING", "APPROVED", "REJECTED"}

func (s TxStatus) String() string {
	if int(s) < len(txStatusNames) {
		return txStatusNames[s]
	}
	return fmt.Sprintf("TxStatus(%d)", uint8(s))
}

func (s TxStatus) Terminal() bool { return s == TxStatusApproved || s == TxStatusRejected }

func ParseTxStatus(s string) (TxStatus, error) {
	for i, n := range txStatusNames {
		if n == s {
			return TxStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tx status %q", s)
}

func (s TxStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *TxStatus) UnmarshalText(b []byte) error {
	v, err := ParseTxStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// TxKind names the entity type a settlement or audit entry refers to.
type TxKind string

const (
	TxKindDeposit    TxKind = "DEPOSIT"
	TxKindWithdrawal TxKind = "WITHDRAWAL"
)

// AuditAction is what an admin did to an entity.
type AuditAction string

const (
	AuditApprove AuditAction = "APPROVE"
	AuditReject  AuditAction = "REJECT"
)

// Tier is the referral tier derived from the invite count.
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// TierFor maps an invite count to its tier.
func TierFor(invites int64) Tier {
	switch {
	case invites >= 50:
		return TierPlatinum
	case invites >= 20:
		return TierGold
	case invites >= 5:
		return TierSilver
	default:
		return TierBronze
	}
}
