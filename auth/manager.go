package auth

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"libraryman/logging"
	"libraryman/store"
)

// ErrUnauthorized reports a failed login: unknown username or wrong password.
// The two cases are deliberately indistinguishable to the caller.
var ErrUnauthorized = errors.New("unauthorized")

// ErrUnauthenticated reports that no valid session is active.
var ErrUnauthenticated = errors.New("not logged in")

// ErrExists reports a registration against a username that is taken.
var ErrExists = errors.New("username already exists")

// Credential is one 3-line record in a credential store: username, the
// legacy hash in decimal, and the issued session token.
type Credential struct {
	Username string
	Hash     uint64
	Token    string
}

// credentialCodec maps a Credential to its 3-line group.
type credentialCodec struct{}

func (credentialCodec) Decode(r *store.LineReader) (Credential, error) {
	g, err := store.ReadGroup(r, 3)
	if err != nil {
		return Credential{}, err
	}
	hash, err := strconv.ParseUint(g[1], 10, 64)
	if err != nil {
		return Credential{}, store.Corruptf(r, "hash %q is not a number", g[1])
	}
	return Credential{Username: g[0], Hash: hash, Token: g[2]}, nil
}

func (credentialCodec) Encode(w io.Writer, c Credential) error {
	_, err := fmt.Fprintf(w, "%s\n%d\n%s\n", c.Username, c.Hash, c.Token)
	return err
}

// Session identifies the authenticated caller of an operation. It is passed
// explicitly; the manager keeps no process-wide current-user state.
type Session struct {
	Username string
	Token    string
	Admin    bool
}

// Manager owns the user and admin credential stores and the local session
// file. No other component reads or writes them.
type Manager struct {
	users       *store.Store[Credential]
	admins      *store.Store[Credential]
	sessionPath string
}

// NewManager builds a manager over the two credential store files and the
// single-line session file.
func NewManager(userPath, adminPath, sessionPath string) *Manager {
	return &Manager{
		users:       store.New(userPath, credentialCodec{}),
		admins:      store.New(adminPath, credentialCodec{}),
		sessionPath: sessionPath,
	}
}

// EnsureStores creates empty credential stores and session file on first run.
func (m *Manager) EnsureStores() error {
	if err := m.users.EnsureExists(); err != nil {
		return err
	}
	if err := m.admins.EnsureExists(); err != nil {
		return err
	}
	if _, err := os.Stat(m.sessionPath); os.IsNotExist(err) {
		return os.WriteFile(m.sessionPath, nil, 0o600)
	}
	return nil
}

// Register creates a new user credential. The password must match its
// confirmation and both the username and password policies; the username
// must be free. The session token is derived and stored immediately so
// login only has to copy it to the session file.
func (m *Manager) Register(username, password, confirm string) error {
	if password != confirm {
		return &ValidationError{Field: "password", Reason: "passwords do not match"}
	}
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}

	_, err := m.users.Find(func(c Credential) bool { return c.Username == username })
	if err == nil {
		return fmt.Errorf("%s: %w", username, ErrExists)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash := Hash(password, Salt(username))
	cred := Credential{Username: username, Hash: hash, Token: Token(username, hash)}
	if err := m.users.Append(cred); err != nil {
		return err
	}
	logging.Infof("registered user %s", username)
	return nil
}

// Login authenticates a user and activates their session.
func (m *Manager) Login(username, password string) (Session, error) {
	return m.login(m.users, username, password, false)
}

// AdminLogin authenticates against the admin store. Admin records are
// provisioned out of band (see cmd/seed); there is no admin registration.
func (m *Manager) AdminLogin(username, password string) (Session, error) {
	return m.login(m.admins, username, password, true)
}

func (m *Manager) login(st *store.Store[Credential], username, password string, admin bool) (Session, error) {
	hash := Hash(password, Salt(username))
	cred, err := st.Find(func(c Credential) bool { return c.Username == username })
	if errors.Is(err, store.ErrNotFound) {
		return Session{}, ErrUnauthorized
	}
	if err != nil {
		return Session{}, err
	}
	if cred.Hash != hash {
		return Session{}, ErrUnauthorized
	}
	if err := os.WriteFile(m.sessionPath, []byte(cred.Token+"\n"), 0o600); err != nil {
		return Session{}, fmt.Errorf("write session file: %w", err)
	}
	logging.Infof("login for %s", username)
	return Session{Username: cred.Username, Token: cred.Token, Admin: admin}, nil
}

// Logout truncates the session file to empty.
func (m *Manager) Logout() error {
	if err := os.WriteFile(m.sessionPath, nil, 0o600); err != nil {
		return fmt.Errorf("clear session file: %w", err)
	}
	return nil
}

// CurrentSession resolves the token in the session file back to its owner,
// checking the user store and then the admin store. An empty session file
// is ErrUnauthenticated; a token no store knows is stale, so the file is
// cleared before returning ErrUnauthenticated.
func (m *Manager) CurrentSession() (Session, error) {
	data, err := os.ReadFile(m.sessionPath)
	if os.IsNotExist(err) {
		return Session{}, ErrUnauthenticated
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return Session{}, ErrUnauthenticated
	}

	byToken := func(c Credential) bool { return c.Token == token }
	if cred, err := m.users.Find(byToken); err == nil {
		return Session{Username: cred.Username, Token: cred.Token}, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return Session{}, err
	}
	if cred, err := m.admins.Find(byToken); err == nil {
		return Session{Username: cred.Username, Token: cred.Token, Admin: true}, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return Session{}, err
	}

	logging.Warnf("session file held a token no credential store knows; clearing it")
	if err := m.Logout(); err != nil {
		return Session{}, err
	}
	return Session{}, ErrUnauthenticated
}

// RemoveAccount deletes the user's credential record. The caller must have
// verified the user has no outstanding loans first.
func (m *Manager) RemoveAccount(username string) error {
	return m.users.Rewrite(func(creds []Credential) ([]Credential, error) {
		for i := range creds {
			if creds[i].Username == username {
				return append(creds[:i], creds[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("user %s: %w", username, store.ErrNotFound)
	})
}

// SeedAdmin appends an admin credential. Offline provisioning only; the
// running application never writes the admin store.
func (m *Manager) SeedAdmin(username, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	_, err := m.admins.Find(func(c Credential) bool { return c.Username == username })
	if err == nil {
		return fmt.Errorf("%s: %w", username, ErrExists)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	hash := Hash(password, Salt(username))
	return m.admins.Append(Credential{Username: username, Hash: hash, Token: Token(username, hash)})
}
