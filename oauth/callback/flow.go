// Package callback implements the one-time consent flow an operator runs to
// obtain a refresh token for a service.
package callback

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Misiix9/portfolio-api/api"
	"github.com/Misiix9/portfolio-api/oauth/oclient"
	"github.com/Misiix9/portfolio-api/session"
	"github.com/Misiix9/portfolio-api/utils"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

type Options struct {
	// CallbackPath is the route the provider redirects back to.
	CallbackPath string
	// LoginPath is linked from the guidance page when set.
	LoginPath string
	// RedirectBaseURL is prepended to CallbackPath. Empty derives it from
	// the request.
	RedirectBaseURL string
	// StateSecret signs the state cookie. Empty disables Login.
	StateSecret []byte
	// Vault also receives the tokens when set.
	Vault oclient.TokenVault
	// RequireRefreshToken answers with guidance instead of the token page
	// when the exchange returns no refresh token.
	RequireRefreshToken bool
	// RevokeURL is where the operator removes a prior grant.
	RevokeURL string
	Now       func() time.Time
}

type Flow struct {
	provider *oclient.Provider
	opts     Options
}

func NewFlow(provider *oclient.Provider, opts Options) *Flow {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.RedirectBaseURL = strings.TrimSuffix(opts.RedirectBaseURL, "/")
	return &Flow{provider: provider, opts: opts}
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (f *Flow) redirectURL(r *http.Request) string {
	base := f.opts.RedirectBaseURL
	if base == "" {
		base = utils.BaseURL(r)
	}
	return base + f.opts.CallbackPath
}

func secure(r *http.Request) bool {
	return strings.HasPrefix(utils.BaseURL(r), "https://")
}

// Login redirects to the provider's consent page with a fresh state and
// PKCE challenge, remembered in a signed cookie.
func (f *Flow) Login(r *http.Request) api.Result {
	ctx := r.Context()
	service := f.provider.Service()

	if len(f.opts.StateSecret) == 0 {
		return api.JSON(http.StatusInternalServerError, errorBody{
			Error:   "Login is not configured",
			Details: "SESSION_SECRET is empty",
		})
	}
	creds, err := f.provider.ClientCredentials()
	if err != nil {
		api.Logger(ctx).Error("oauth login misconfigured", "service", service.Name, "err", err)
		return api.JSON(http.StatusInternalServerError, errorBody{Error: "Missing configuration", Details: err.Error()})
	}

	verifier := oauth2.GenerateVerifier()
	state := &session.OAuthState{
		Provider:  service.Name,
		State:     uuid.NewString(),
		Verifier:  verifier,
		ExpiresAt: f.opts.Now().Add(session.DefaultTTL).Unix(),
	}
	cookie, err := session.NewStateCookie(state, f.opts.StateSecret, secure(r))
	if err != nil {
		api.Logger(ctx).Error("state cookie failed", "service", service.Name, "err", err)
		return api.Error(http.StatusInternalServerError, "Internal server error")
	}

	params := append([]oauth2.AuthCodeOption{}, service.AuthParams...)
	params = append(params, oauth2.S256ChallengeOption(verifier))
	authURL := f.provider.Config(creds, f.redirectURL(r)).AuthCodeURL(state.State, params...)

	return api.WithCookies(api.Redirect(authURL), cookie)
}

// Callback exchanges the authorization code and shows the refresh token.
func (f *Flow) Callback(r *http.Request) api.Result {
	ctx := r.Context()
	service := f.provider.Service()
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		return api.JSON(http.StatusBadRequest, errorBody{Error: "Authorization failed", Details: e})
	}
	code := q.Get("code")
	if code == "" {
		return api.Error(http.StatusBadRequest, "Missing authorization code")
	}

	creds, err := f.provider.ClientCredentials()
	if err != nil {
		api.Logger(ctx).Error("oauth callback misconfigured", "service", service.Name, "err", err)
		return api.JSON(http.StatusInternalServerError, errorBody{Error: "Missing configuration", Details: err.Error()})
	}

	var (
		exchangeOpts []oauth2.AuthCodeOption
		cookies      []*http.Cookie
	)
	if len(f.opts.StateSecret) > 0 {
		st, err := session.StateFromRequest(r, service.Name, f.opts.StateSecret)
		switch {
		case errors.Is(err, session.ErrNoState):
			// Consent URL built by hand; nothing to verify.
		case err != nil:
			api.Logger(ctx).Warn("oauth state rejected", "service", service.Name, "err", err)
			return api.WithCookies(api.Error(http.StatusBadRequest, "Invalid state"),
				session.ClearStateCookie(service.Name, secure(r)))
		case st.State != q.Get("state"):
			return api.WithCookies(api.Error(http.StatusBadRequest, "Invalid state"),
				session.ClearStateCookie(service.Name, secure(r)))
		default:
			if st.Verifier != "" {
				exchangeOpts = append(exchangeOpts, oauth2.VerifierOption(st.Verifier))
			}
			cookies = append(cookies, session.ClearStateCookie(service.Name, secure(r)))
		}
	}

	tok, err := f.provider.Config(creds, f.redirectURL(r)).Exchange(f.provider.Context(ctx), code, exchangeOpts...)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			api.Logger(ctx).Error("token exchange rejected", "service", service.Name, "status", re.Response.StatusCode)
			return api.WithCookies(api.JSON(http.StatusBadRequest, errorBody{
				Error:   "Token exchange failed",
				Details: string(re.Body),
			}), cookies...)
		}
		api.Logger(ctx).Error("token exchange failed", "service", service.Name, "err", err)
		return api.WithCookies(api.JSON(http.StatusInternalServerError, errorBody{
			Error:   "Token exchange failed",
			Details: err.Error(),
		}), cookies...)
	}

	data := pageData{
		Title:        service.Title + " authorization",
		Service:      service.Title,
		EnvKey:       service.RefreshTokenKey(),
		RefreshToken: tok.RefreshToken,
	}

	if tok.RefreshToken == "" && f.opts.RequireRefreshToken {
		data.RevokeURL = f.opts.RevokeURL
		data.LoginURL = f.opts.LoginPath
		return api.WithCookies(api.HTML(http.StatusBadRequest, pages, pageMissingRefresh, data), cookies...)
	}

	if tok.RefreshToken != "" {
		if qr, err := QRCodeDataURI(tok.RefreshToken); err != nil {
			api.Logger(ctx).Warn("qr code render failed", "service", service.Name, "err", err)
		} else {
			data.QRCode = qr
		}
		data.Stored = f.store(ctx, service.Name, tok)
	}

	return api.WithCookies(api.HTML(http.StatusOK, pages, pageSuccess, data), cookies...)
}

func (f *Flow) store(ctx context.Context, provider string, tok *oauth2.Token) bool {
	if f.opts.Vault == nil {
		return false
	}
	err := f.opts.Vault.StoreTokens(ctx, provider, oclient.TokenPair{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
		IssuedAt:     f.opts.Now(),
	})
	if err != nil {
		api.Logger(ctx).Error("storing tokens failed", "service", provider, "err", err)
		return false
	}
	return true
}
