package session

import "context"

type Session struct {
	UserID string
	Token  string
}

// None is the no-session variant. Progress fetches and saves are skipped for it.
var None = Session{}

func (s Session) Valid() bool {
	return s.UserID != "" && s.Token != ""
}

// Kind is reported in view snapshots so clients can show an auth-required state.
func (s Session) Kind() string {
	if s.Valid() {
		return "user"
	}
	return "none"
}

type ctxKey struct{}

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) Session {
	s, ok := ctx.Value(ctxKey{}).(Session)
	if !ok {
		return None
	}
	return s
}
