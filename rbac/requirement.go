package rbac

import (
	"sort"
)

// PermissionSet is a deduplicated set of permission codes.
type PermissionSet map[string]struct{}

func NewPermissionSet(codes ...string) PermissionSet {
	s := make(PermissionSet, len(codes))
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

func (s PermissionSet) Add(code string) {
	s[code] = struct{}{}
}

func (s PermissionSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// Sorted returns the codes in lexical order.
func (s PermissionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

type Mode int

const (
	ModeAll Mode = iota
	ModeAny
)

// Requirement is the permission expression a route or page is gated by.
type Requirement struct {
	Permissions         []string
	Mode                Mode
	SkipPermissionCheck bool
}

// Require demands every listed permission.
func Require(perms ...string) Requirement {
	return Requirement{Permissions: perms, Mode: ModeAll}
}

// RequireAny demands at least one of the listed permissions.
func RequireAny(perms ...string) Requirement {
	return Requirement{Permissions: perms, Mode: ModeAny}
}

// SessionOnly needs an authenticated, active user and nothing else. Used for
// read-only reference data.
func SessionOnly() Requirement {
	return Requirement{SkipPermissionCheck: true}
}

// Satisfied evaluates the requirement against a granted set. An empty
// permission list only passes when the check is skipped.
func (r Requirement) Satisfied(granted PermissionSet) bool {
	if r.SkipPermissionCheck {
		return true
	}
	if len(r.Permissions) == 0 {
		return false
	}

	switch r.Mode {
	case ModeAny:
		for _, p := range r.Permissions {
			if granted.Has(p) {
				return true
			}
		}
		return false
	default:
		for _, p := range r.Permissions {
			if !granted.Has(p) {
				return false
			}
		}
		return true
	}
}
