package model

// SessionState is the logged-in marker of a browser.  It is written and
// cleared as one record so a browser is never half logged in.
type SessionState struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	UserName   string `json:"userName"`
	UserEmail  string `json:"userEmail"`
}

// Complete reports whether the session carries the identity fields a
// logged-in session is expected to have.
func (s SessionState) Complete() bool {
	return s.IsLoggedIn && s.UserName != "" && s.UserEmail != ""
}
