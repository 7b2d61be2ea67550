package portal

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/dmitrymomot/memberportal/core/logger"
	"github.com/dmitrymomot/memberportal/core/response"
	"github.com/dmitrymomot/memberportal/core/session"
	"github.com/dmitrymomot/memberportal/integration/apiclient"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in loginRequest) validate() error {
	details := map[string]any{}
	if strings.TrimSpace(in.Email) == "" {
		details["email"] = "required"
	}
	if in.Password == "" {
		details["password"] = "required"
	}
	if len(details) > 0 {
		return response.ErrUnprocessableEntity.WithDetails(details)
	}
	return nil
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

func (in registerRequest) validate() error {
	details := map[string]any{}
	if strings.TrimSpace(in.Name) == "" {
		details["name"] = "required"
	}
	if !strings.Contains(in.Email, "@") {
		details["email"] = "must be an email address"
	}
	if len(in.Password) < 8 {
		details["password"] = "must be at least 8 characters"
	}
	if len(details) > 0 {
		return response.ErrUnprocessableEntity.WithDetails(details)
	}
	return nil
}

// sessionView is the public shape of the current session.
type sessionView struct {
	User            *session.User `json:"user"`
	IsAuthenticated bool          `json:"isAuthenticated"`
}

func currentSession(r *http.Request) sessionView {
	h, err := holderFor(r)
	if err != nil {
		return sessionView{}
	}
	st := h.State()
	return sessionView{User: st.User, IsAuthenticated: st.IsAuthenticated}
}

func (app *App) loginPage(r *http.Request) response.Response {
	return response.JSON(map[string]any{
		"action":  app.rules.LoginPath,
		"fields":  []string{"email", "password"},
		"session": currentSession(r),
	})
}

func (app *App) login(r *http.Request) response.Response {
	var in loginRequest
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			return response.Error(response.ErrBadRequest.WithError(err))
		}
		in = loginRequest{Email: r.PostForm.Get("email"), Password: r.PostForm.Get("password")}
	} else if err := decodeJSON(r, &in); err != nil {
		return response.Error(err)
	}
	if err := in.validate(); err != nil {
		return response.Error(err)
	}

	// The anonymous client: a rejected password must not trigger the logout hook.
	user, token, err := app.api.Auth.Login(r.Context(), strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return response.Error(response.ErrUnauthorized.WithMessage("invalid email or password"))
		}
		return response.Error(upstream(err))
	}
	return app.signIn(r, user, token)
}

func (app *App) register(r *http.Request) response.Response {
	var in registerRequest
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			return response.Error(response.ErrBadRequest.WithError(err))
		}
		in = registerRequest{
			Name:     r.PostForm.Get("name"),
			Email:    r.PostForm.Get("email"),
			Password: r.PostForm.Get("password"),
			Phone:    r.PostForm.Get("phone"),
		}
	} else if err := decodeJSON(r, &in); err != nil {
		return response.Error(err)
	}
	if err := in.validate(); err != nil {
		return response.Error(err)
	}

	user, token, err := app.api.Auth.Register(r.Context(), apiclient.RegisterInput{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
		Phone:    in.Phone,
	})
	if err != nil {
		return response.Error(upstream(err))
	}
	return app.signIn(r, user, token)
}

// signIn records the session and issues the bearer cookie.
func (app *App) signIn(r *http.Request, user *session.User, token string) response.Response {
	holder, err := holderFor(r)
	if err != nil {
		return response.Error(err)
	}
	holder.Login(r.Context(), user, token)
	app.logger.InfoContext(r.Context(), "user signed in",
		logger.UserID(user.ID),
		logger.Role(user.Role.String()),
	)

	var resp response.Response
	if isForm(r) {
		resp = response.RedirectSeeOther(app.rules.HomePath)
	} else {
		resp = response.JSON(currentSession(r))
	}
	return response.Before(resp, func(w http.ResponseWriter) error {
		return app.credential.Set(w, token)
	})
}

func (app *App) logout(r *http.Request) response.Response {
	holder, err := holderFor(r)
	if err != nil {
		return response.Error(err)
	}
	if u := holder.User(); u != nil {
		app.logger.InfoContext(r.Context(), "user signed out", logger.UserID(u.ID))
	}
	holder.Logout(r.Context())

	return response.Before(response.RedirectSeeOther("/"), func(w http.ResponseWriter) error {
		app.credential.Clear(w)
		return nil
	})
}

func isForm(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

// upstream maps API failures to portal errors. Status errors keep their
// status; transport failures become 502.
func upstream(err error) error {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return err
	}
	return response.ErrBadGateway.WithError(err)
}
