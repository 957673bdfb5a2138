package views

import (
	"backlog/internal/models"
	"backlog/internal/providers"
	"backlog/internal/session"
	"context"
	"fmt"
	"github.com/gookit/validate"
	"io"
	"strings"
)

type LoginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (f LoginForm) Messages() map[string]string {
	return validate.MS{"required": "{field} is required"}
}

type RegisterForm struct {
	Username        string `json:"username" validate:"required|minLen:3"`
	Email           string `json:"email" validate:"required|email"`
	Password        string `json:"password" validate:"required|minLen:6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
}

func (f RegisterForm) Messages() map[string]string {
	return validate.MS{
		"required": "{field} is required",
		"minLen":   "{field} is too short",
		"email":    "{field} is not a valid email address",
	}
}

func (f *RegisterForm) Validate() error {
	if err := validateStruct(f); err != nil {
		return err
	}
	if f.Password != f.ConfirmPassword {
		return &models.ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	}
	return nil
}

// AuthView is the landing route. It hosts sign in, registration and sign out.
type AuthView struct {
	session   session.StoreInterface
	nav       Navigator
	notifier  Notifier
	confirmer Confirmer
	logger    providers.Logger
}

func NewAuthView(store session.StoreInterface, nav Navigator, notifier Notifier, confirmer Confirmer, logger providers.Logger) *AuthView {
	return &AuthView{session: store, nav: nav, notifier: notifier, confirmer: confirmer, logger: logger}
}

// Mount sends an already signed in user home.
func (v *AuthView) Mount(ctx context.Context) error {
	if v.session.IsAuthenticated() {
		return v.nav.Navigate(ctx, providers.RouteHome)
	}
	return nil
}

func (v *AuthView) Unmount() {}

func (v *AuthView) Login(ctx context.Context, form LoginForm) error {
	form.Username = strings.TrimSpace(form.Username)
	if err := validateStruct(&form); err != nil {
		return err
	}
	if err := v.session.Login(ctx, &models.LoginRequest{Username: form.Username, Password: form.Password}); err != nil {
		return err
	}
	v.notifier.Info(fmt.Sprintf("Welcome back, %s", v.session.User().DisplayName()))
	return v.nav.Navigate(ctx, providers.RouteHome)
}

func (v *AuthView) Register(ctx context.Context, form RegisterForm) error {
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)
	if err := form.Validate(); err != nil {
		return err
	}
	err := v.session.Register(ctx, &models.RegisterRequest{
		Username:  form.Username,
		Email:     form.Email,
		Password:  form.Password,
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
	})
	if err != nil {
		return err
	}
	v.notifier.Info(fmt.Sprintf("Welcome, %s", v.session.User().DisplayName()))
	return v.nav.Navigate(ctx, providers.RouteHome)
}

// Logout asks first and reports whether the session ended.
func (v *AuthView) Logout(ctx context.Context) (bool, error) {
	if !v.session.IsAuthenticated() {
		return false, nil
	}
	if !v.confirmer.Confirm("Are you sure you want to log out?") {
		return false, nil
	}
	v.session.Logout()
	v.logger.Infof(providers.TypeView, "Signed out")
	return true, v.nav.Navigate(ctx, providers.RouteLogin)
}

func (v *AuthView) Render(w io.Writer) {
	if v.session.Loading() {
		fmt.Fprintln(w, "Signing in...")
		return
	}
	if u := v.session.User(); u != nil {
		fmt.Fprintf(w, "Signed in as %s.\n", u.Username)
		return
	}
	fmt.Fprintln(w, "Not signed in.")
	fmt.Fprintln(w, "  login username=... password=...")
	fmt.Fprintln(w, "  register username=... email=... password=... confirm=... [first=...] [last=...]")
}
