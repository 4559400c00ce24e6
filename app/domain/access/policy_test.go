package access

import (
	"testing"

	"square.ai/skill-gateway/app/domain/auth"
)

type target struct {
	owner     string
	published bool
}

func (t target) Owner() string     { return t.owner }
func (t target) IsPublished() bool { return t.published }

func TestAuthorizeMatrix(t *testing.T) {
	alice := auth.Identity{Realm: "square", Username: "alice"}
	bob := auth.Identity{Realm: "square", Username: "bob"}
	anon := auth.Anonymous()

	cases := []struct {
		name     string
		identity auth.Identity
		target   target
		write    bool
		allowed  bool
	}{
		{"owner reads private", alice, target{"alice", false}, false, true},
		{"owner writes private", alice, target{"alice", false}, true, true},
		{"owner writes published", alice, target{"alice", true}, true, true},
		{"other reads private", bob, target{"alice", false}, false, false},
		{"other reads published", bob, target{"alice", true}, false, true},
		{"other writes published", bob, target{"alice", true}, true, false},
		{"anonymous reads published", anon, target{"alice", true}, false, true},
		{"anonymous reads private", anon, target{"alice", false}, false, false},
		{"anonymous never owns ownerless", anon, target{"", false}, true, false},
	}
	for _, c := range cases {
		d := Authorize(c.identity, c.target, c.write)
		if d.Allowed != c.allowed {
			t.Errorf("%s: allowed = %v, want %v", c.name, d.Allowed, c.allowed)
		}
		if !d.Allowed && d.Reason != ReasonForbidden {
			t.Errorf("%s: reason = %q", c.name, d.Reason)
		}
	}
}

func TestWriteAllowedOnlyForOwner(t *testing.T) {
	users := []string{"alice", "bob", "carol"}
	for _, owner := range users {
		for _, published := range []bool{true, false} {
			for _, caller := range users {
				d := Authorize(auth.Identity{Username: caller}, target{owner, published}, true)
				if d.Allowed != (caller == owner) {
					t.Errorf("owner=%s caller=%s published=%v: allowed=%v", owner, caller, published, d.Allowed)
				}
			}
		}
	}
}
