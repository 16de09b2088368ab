package auth

import "strconv"

// Identity is the resolved caller of a request: either anonymous or a
// specific user. It is passed explicitly to every ownership check.
type Identity struct {
	userID        int64
	authenticated bool
}

func Anonymous() Identity { return Identity{} }

func User(id int64) Identity { return Identity{userID: id, authenticated: true} }

// UserID returns the user id and false for anonymous callers.
func (i Identity) UserID() (int64, bool) { return i.userID, i.authenticated }

func (i Identity) IsAnonymous() bool { return !i.authenticated }

func (i Identity) String() string {
	if !i.authenticated {
		return "anonymous"
	}
	return "user:" + strconv.FormatInt(i.userID, 10)
}
