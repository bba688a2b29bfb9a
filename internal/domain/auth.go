package domain

// User is the authenticated viewer's identity, extracted from token claims.
type User struct {
	Id    UserId `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthState is computed once at startup from stored credentials and
// recomputed on login/logout.
type AuthState struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user"`
	Loading       bool  `json:"loading"`
}

func Unauthenticated() AuthState {
	return AuthState{Authenticated: false, User: nil, Loading: false}
}
