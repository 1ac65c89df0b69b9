package gitrepo

import (
	"fmt"
	"net/url"
)

// Config is the read-only remote identity snapshot taken at the start of a
// sync cycle. It is constructed from the persisted sync configuration and
// never mutated mid-cycle.
type Config struct {
	Credential     string // Access token for the git host
	AccountID      string // Account owning the backup repository
	RepositoryName string
	Branch         string
}

// Validate requires all four fields to be non-empty before the configuration
// is considered usable.
func (c Config) Validate() error {
	if c.Credential == "" || c.AccountID == "" || c.RepositoryName == "" || c.Branch == "" {
		return ErrIncompleteConfig
	}
	return nil
}

// remoteURL builds the credential-embedded HTTPS remote endpoint. The built
// value is opaque: it must never be logged or persisted, only its structured
// inputs are.
func (c Config) remoteURL(host string) string {
	u := url.URL{
		Scheme: "https",
		User:   url.UserPassword(c.AccountID, c.Credential),
		Host:   host,
		Path:   fmt.Sprintf("/%s/%s.git", c.AccountID, c.RepositoryName),
	}
	return u.String()
}
