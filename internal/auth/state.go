package auth

import "github.com/Skotchmaster/storefront/pkg/models"

type State struct {
	User          *models.User
	Token         string
	Authenticated bool
	Loading       bool
}

// InitialState is loading until the first Restore finishes.
func InitialState() State {
	return State{Loading: true}
}

func (s State) Role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

type Action interface {
	isAction()
}

type LoginSucceeded struct {
	User  models.User
	Token string
}

type LoggedOut struct{}

type LoadingSet struct {
	Loading bool
}

// UserUpdated merges its non-empty fields over the current user.
type UserUpdated struct {
	Patch models.User
}

func (LoginSucceeded) isAction() {}
func (LoggedOut) isAction()      {}
func (LoadingSet) isAction()     {}
func (UserUpdated) isAction()    {}

func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case LoginSucceeded:
		u := a.User
		return State{User: &u, Token: a.Token, Authenticated: true}
	case LoggedOut:
		return State{}
	case LoadingSet:
		s.Loading = a.Loading
		return s
	case UserUpdated:
		var cur models.User
		if s.User != nil {
			cur = *s.User
		}
		merged := cur.Merge(a.Patch)
		s.User = &merged
		return s
	default:
		return s
	}
}
