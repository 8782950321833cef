package logics

import (
	"context"

	"contaula-server/internal/models"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session value keys. The session carries only authentication state and the
// role cached at login time; slide indices and other view-local state belong
// to the front-end.
const (
	sessionKeyAuthenticated = "authenticated"
	sessionKeyUsername      = "username"
	sessionKeyRole          = "role"
	sessionKeyShowPortada   = "show_portada"
	sessionKeyLoginError    = "login_error"
)

// genericLoginError deliberately does not say which field was wrong.
const genericLoginError = "Usuario o contraseña incorrectos"

// SessionService drives the per-viewer authentication state machine:
// Anonymous -> (valid credentials) -> authenticated showing the portada ->
// (dismiss) -> in app -> (logout) -> Anonymous.
type SessionService struct {
	verifier CredentialVerifier
	logger   *zap.Logger
}

func NewSessionService(verifier CredentialVerifier, logger *zap.Logger) *SessionService {
	return &SessionService{verifier: verifier, logger: logger}
}

// EnsureDefaults initializes every field the core reads. A session without a
// login_error field is a defect the rest of the code must not have to
// defend against.
func (s *SessionService) EnsureDefaults(sess *sessions.Session) {
	if _, ok := sess.Values[sessionKeyAuthenticated].(bool); !ok {
		sess.Values[sessionKeyAuthenticated] = false
	}
	if _, ok := sess.Values[sessionKeyShowPortada].(bool); !ok {
		sess.Values[sessionKeyShowPortada] = false
	}
	if _, ok := sess.Values[sessionKeyLoginError].(string); !ok {
		sess.Values[sessionKeyLoginError] = ""
	}
}

// Login verifies the credentials and, on success, marks the session
// authenticated, caches the role and arms the portada splash. On failure the
// session stays anonymous and login_error holds one generic message.
func (s *SessionService) Login(ctx context.Context, sess *sessions.Session, rawUsername, password string) (*models.User, error) {
	s.EnsureDefaults(sess)

	user, err := s.verifier.VerifyCredentials(ctx, rawUsername, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.Logout(sess)
		sess.Values[sessionKeyLoginError] = genericLoginError
		return nil, nil
	}

	sess.Values[sessionKeyAuthenticated] = true
	sess.Values[sessionKeyUsername] = user.Username
	sess.Values[sessionKeyRole] = user.Role
	sess.Values[sessionKeyShowPortada] = true
	sess.Values[sessionKeyLoginError] = ""

	s.logger.Info("Login", zap.String("username", user.Username), zap.String("role", user.Role))
	return user, nil
}

// Logout returns the session to Anonymous, clearing everything except
// non-sensitive defaults.
func (s *SessionService) Logout(sess *sessions.Session) {
	sess.Values[sessionKeyAuthenticated] = false
	delete(sess.Values, sessionKeyUsername)
	delete(sess.Values, sessionKeyRole)
	sess.Values[sessionKeyShowPortada] = false
	sess.Values[sessionKeyLoginError] = ""
}

// CurrentUser returns the authenticated username and cached role, or
// ok=false for an anonymous session.
func (s *SessionService) CurrentUser(sess *sessions.Session) (username, role string, ok bool) {
	authenticated, _ := sess.Values[sessionKeyAuthenticated].(bool)
	if !authenticated {
		return "", "", false
	}
	username, _ = sess.Values[sessionKeyUsername].(string)
	role, _ = sess.Values[sessionKeyRole].(string)
	if username == "" {
		return "", "", false
	}
	return username, role, true
}

// ShowPortada reports whether the splash view is armed.
func (s *SessionService) ShowPortada(sess *sessions.Session) bool {
	show, _ := sess.Values[sessionKeyShowPortada].(bool)
	return show
}

// DismissPortada moves the session from the splash to the app proper.
func (s *SessionService) DismissPortada(sess *sessions.Session) {
	sess.Values[sessionKeyShowPortada] = false
}

// LoginError returns the most recent login failure message, empty when the
// last attempt succeeded.
func (s *SessionService) LoginError(sess *sessions.Session) string {
	msg, _ := sess.Values[sessionKeyLoginError].(string)
	return msg
}
