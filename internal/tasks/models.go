package tasks

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"taskapp-backend/internal/auth"
)

type State string

const (
	StatePending   State = "PENDING"
	StateExecuting State = "EXECUTING"
	StateDone      State = "DONE"
)

// States lists every legal state in lifecycle order.
func States() []State {
	return []State{StatePending, StateExecuting, StateDone}
}

func (s State) Valid() bool {
	switch s {
	case StatePending, StateExecuting, StateDone:
		return true
	}
	return false
}

// ParseState accepts only the exact upper-case state names.
func ParseState(s string) (State, error) {
	st := State(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown state %q", s)
	}
	return st, nil
}

type OwnerKind int

const (
	OwnerPublic OwnerKind = iota
	OwnerUser
)

// Owner is either Public (a guest task anyone may use) or Owned by one user.
type Owner struct {
	kind   OwnerKind
	userID int64
}

func Public() Owner { return Owner{kind: OwnerPublic} }

func Owned(userID int64) Owner { return Owner{kind: OwnerUser, userID: userID} }

// OwnerFor is the owner of a task created by caller.
func OwnerFor(caller auth.Identity) Owner {
	if uid, ok := caller.UserID(); ok {
		return Owned(uid)
	}
	return Public()
}

func (o Owner) Kind() OwnerKind { return o.kind }

func (o Owner) UserID() (int64, bool) { return o.userID, o.kind == OwnerUser }

// Allows is the only access check for tasks. Public tasks are open to every
// caller, authenticated or not; owned tasks only to their owner.
func (o Owner) Allows(caller auth.Identity) bool {
	switch o.kind {
	case OwnerPublic:
		return true
	case OwnerUser:
		uid, ok := caller.UserID()
		return ok && uid == o.userID
	default:
		return false
	}
}

func (o Owner) MarshalJSON() ([]byte, error) {
	if uid, ok := o.UserID(); ok {
		return json.Marshal(uid)
	}
	return []byte("null"), nil
}

const dateLayout = "2006-01-02"

// Date is a calendar date serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     *Date     `json:"dueDate"`
	Priority    *string   `json:"priority"`
	State       State     `json:"state"`
	Completed   bool      `json:"completed"`
	Owner       Owner     `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Subtask struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"taskId"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}
