package model

import "time"

// User represents a registered account as stored in a browser's
// `registeredUsers` list.  The email is the unique key; registering the
// same email again replaces the whole record.  The password is kept in
// plaintext because this store is a toy and not a security boundary.
//
// Fields:
//  Name      – display name, trimmed at registration.
//  Email     – unique, compared case-sensitively.
//  Password  – plaintext password.
//  CreatedAt – time of (re-)registration.
type User struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}
