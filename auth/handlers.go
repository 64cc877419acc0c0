package auth

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/taskman-go/apperror"
	"github.com/user/taskman-go/session"
	"github.com/user/taskman-go/web"
)

// genericLoginError is shown when login fails for a reason other than bad
// credentials, e.g. a storage outage.
const genericLoginError = "An error occurred. Please try again."

// Handlers serves the login, registration, and logout pages.
type Handlers struct {
	service    *Service
	sessions   session.Store
	sessionTTL time.Duration
	renderer   *web.Renderer
	logger     *zap.Logger
}

// NewHandlers creates the auth page handlers.
func NewHandlers(service *Service, sessions session.Store, sessionTTL time.Duration, renderer *web.Renderer, logger *zap.Logger) *Handlers {
	return &Handlers{
		service:    service,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		renderer:   renderer,
		logger:     logger,
	}
}

// ShowLogin renders the login form, bouncing already-authenticated users to
// the dashboard.
func (h *Handlers) ShowLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); ok {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		h.renderer.Render(w, http.StatusOK, "login", web.Page{Title: "Login"})
	}
}

// ShowRegister renders the registration form, bouncing already-authenticated
// users to the dashboard.
func (h *Handlers) ShowRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); ok {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		h.renderer.Render(w, http.StatusOK, "register", web.Page{Title: "Register"})
	}
}

// HandleLogin processes the login form. Bad credentials re-render the form
// with the shared generic message; a storage failure re-renders with an
// equally uninformative one.
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.renderer.Render(w, http.StatusBadRequest, "login", web.Page{Title: "Login", Error: genericLoginError})
			return
		}

		principal, err := h.service.Login(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
		if err != nil {
			if apperror.IsAuthError(err) {
				h.renderer.Render(w, http.StatusOK, "login", web.Page{Title: "Login", Error: MsgInvalidCredentials})
				return
			}
			h.logger.Error("login failed", zap.Error(err))
			h.renderer.Render(w, http.StatusOK, "login", web.Page{Title: "Login", Error: genericLoginError})
			return
		}

		h.startSession(w, r, principal)
	}
}

// HandleRegister processes the registration form. Validation and duplicate
// failures re-render the form with their specific message; success logs the
// new user in and redirects to the dashboard.
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.renderer.Render(w, http.StatusBadRequest, "register", web.Page{Title: "Register", Error: MsgFieldsRequired})
			return
		}

		form := RegisterForm{
			Username:        r.PostFormValue("username"),
			Email:           r.PostFormValue("email"),
			Password:        r.PostFormValue("password"),
			ConfirmPassword: r.PostFormValue("confirmPassword"),
		}

		principal, err := h.service.Register(r.Context(), form)
		if err != nil {
			if appErr, ok := apperror.FromError(err); ok &&
				(appErr.Type == apperror.ValidationError || appErr.Type == apperror.ConflictError) {
				h.renderer.Render(w, http.StatusOK, "register", web.Page{Title: "Register", Error: appErr.Message})
				return
			}
			h.logger.Error("registration failed", zap.Error(err))
			h.renderer.Render(w, http.StatusOK, "register", web.Page{Title: "Register", Error: genericLoginError})
			return
		}

		h.startSession(w, r, principal)
	}
}

// HandleLogout destroys the server-side session, clears the cookie, and
// redirects home. A request without a session still redirects home.
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(CookieName); err == nil {
			if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
				h.logger.Error("failed to destroy session", zap.Error(err))
			}
		}
		ClearSessionCookie(w)
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// startSession creates the session, sets the cookie, and redirects to the
// dashboard. Shared by login and the registration auto-login.
func (h *Handlers) startSession(w http.ResponseWriter, r *http.Request, principal *session.Principal) {
	token, err := h.sessions.Create(r.Context(), principal)
	if err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		h.renderer.Render(w, http.StatusOK, "login", web.Page{Title: "Login", Error: genericLoginError})
		return
	}

	SetSessionCookie(w, token, h.sessionTTL)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}
