package session

// Record is the persisted snapshot of a session.
// It mirrors the in-memory holder and is rewritten on every mutation.
type Record struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// Empty reports whether the record carries no user.
func (r Record) Empty() bool {
	return r.User == nil
}

// normalize re-derives IsAuthenticated from user presence; the stored flag is not trusted.
func (r Record) normalize() Record {
	r.User = r.User.Clone()
	if r.User == nil {
		r.Token = ""
	}
	r.IsAuthenticated = r.User != nil
	return r
}

// State is a read-only snapshot of a Holder.
type State struct {
	User            *User
	Token           string
	IsAuthenticated bool
	Hydrated        bool
}

// Role returns the user's role or an empty role when anonymous.
func (s State) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}
