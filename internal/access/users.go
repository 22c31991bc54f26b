package access

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when the username or password do not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is an account that may sign in and receive a token.
type User struct {
	Username     string
	PasswordHash string
	Role         Role
	Name         string
}

// NewUser hashes password and returns the account.
func NewUser(username, password string, role Role, name string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	return User{Username: username, PasswordHash: string(hash), Role: role, Name: name}, nil
}

// Users is the account table, keyed by username.
type Users map[string]User

// ParseUsers reads accounts in the form
// "username:bcrypt-hash:role[:display name]", separated by ";".
func ParseUsers(s string) (Users, error) {
	users := make(Users)
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 4)
		if len(parts) < 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("malformed user entry %q", entry)
		}
		u := User{Username: parts[0], PasswordHash: parts[1], Role: Role(parts[2])}
		if len(parts) == 4 {
			u.Name = parts[3]
		}
		users.Add(u)
	}
	return users, nil
}

// Add stores u, replacing any account with the same username.
func (us Users) Add(u User) {
	us[u.Username] = u
}

// Authenticate checks the password against the stored bcrypt hash.
func (us Users) Authenticate(username, password string) (User, error) {
	u, ok := us[username]
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// DemoUsers returns one account per role, with the role name as both
// username and password.
func DemoUsers() (Users, error) {
	users := make(Users)
	for _, r := range []Role{Admin, Manager, Salesperson, Mechanic, Accountant} {
		u, err := NewUser(string(r), string(r), r, "")
		if err != nil {
			return nil, err
		}
		users.Add(u)
	}
	return users, nil
}
