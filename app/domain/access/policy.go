package access

import "square.ai/skill-gateway/app/domain/auth"

const ReasonForbidden = "forbidden"

// Decision is the outcome of Authorize. The zero value denies.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Protected is anything that carries ownership and visibility flags.
type Protected interface {
	Owner() string
	IsPublished() bool
}

// Authorize allows the owner everything and everybody else read access to
// published resources. Anonymous identities own nothing.
func Authorize(identity auth.Identity, target Protected, writeAccess bool) Decision {
	if !identity.IsAnonymous() && target.Owner() == identity.Username {
		return Allow()
	}
	if !writeAccess && target.IsPublished() {
		return Allow()
	}
	return Deny(ReasonForbidden)
}
