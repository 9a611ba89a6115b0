package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	defaultAPIURL   = "http://localhost:8080"
	sessionFileName = ".booker_session"
)

// APIURL returns the base URL for the Booker API.
// It can be overridden with the BOOKER_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("BOOKER_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// Session is the logged-in user as returned by the login endpoint. It is
// stored as JSON in the user's home directory until logout.
type Session struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the stored session has the admin role. The API does
// not enforce roles itself; the client gates the admin commands.
func (s Session) IsAdmin() bool {
	return s.Role == "admin"
}

func SaveSession(s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(sessionPath(), data, 0600)
}

func LoadSession() (Session, error) {
	data, err := os.ReadFile(sessionPath())
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func ClearSession() error {
	path := sessionPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.ErrNotExist
	}
	return os.Remove(path)
}

func sessionPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, sessionFileName)
}
