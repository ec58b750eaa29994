package session

import "github.com/vidshare/client/internal/domain"

// Flags are the derived view of the local user's role in a room.
//
// Ready guards against snapshot population latency: until at least one
// member carries a non-empty email, IsHost and IsMember are indeterminate
// and a UI must prompt the user to wait rather than assert a negative.
type Flags struct {
	IsHost   bool
	IsMember bool
	Ready    bool
}

// DeriveFlags recomputes the role flags from a snapshot and the local
// identity. Matching is by email only, trimmed and case-folded on both
// sides; a member record without an email can never match, even on user id.
// Unknown identity or a host absent from the member list fails closed.
func DeriveFlags(st *domain.RoomState, id domain.Identity) Flags {
	if st == nil {
		return Flags{}
	}

	var flags Flags
	myEmail := id.NormalizedEmail()

	for _, m := range st.Members {
		if m.Email == nil {
			continue
		}
		email := domain.NormalizeEmail(*m.Email)
		if email == "" {
			continue
		}

		flags.Ready = true

		if myEmail == "" || email != myEmail {
			continue
		}

		flags.IsMember = true
		if m.UserID == st.HostUserID {
			flags.IsHost = true
		}
	}

	return flags
}
