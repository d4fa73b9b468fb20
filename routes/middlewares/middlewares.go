package middlewares

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/formdesk/formdesk/httpx"
)

// Authenticated validates the bearer token and requires a username
// claim. Every form route behind it is scoped to that user.
func Authenticated(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), requireUser).Handler(next)
	}
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if User(r) == "" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// User returns the authenticated username, or "" outside an
// authenticated context.
func User(r *http.Request) string {
	if claims, ok := r.Context().Value(oauth.ClaimsContext).(map[string]string); ok {
		if username, ok := claims["username"]; ok {
			return username
		}
	}
	if credential, ok := r.Context().Value(oauth.CredentialContext).(string); ok {
		return credential
	}
	return ""
}

// CookieAuth lets a browser reach the builder assets with the access
// token stored in a cookie, transparently refreshing an expired token
// or redirecting to the login page.
func CookieAuth(bearerServer *oauth.BearerServer) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				h.ServeHTTP(w, r)
				return
			}

			token, err := r.Cookie("access_token")
			if err != nil && !errors.Is(err, http.ErrNoCookie) {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if err == nil {
				r.Header.Set("authorization", "Bearer "+token.Value)
				buf := httpx.NewResponseBuffer()
				h.ServeHTTP(buf, r)
				if buf.Status() != http.StatusUnauthorized {
					buf.Flush(w)
					return
				}
			}

			loginLocation := "/login?goto=" + url.QueryEscape(r.RequestURI)

			// access token was empty or expired: try the refresh token
			refreshToken, err := r.Cookie("refresh_token")
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				redirect(w, loginLocation)
				return
			}

			resp, err := refreshTokens(bearerServer, refreshToken.Value)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if resp.Status() == http.StatusUnauthorized {
				// stale refresh token: drop it and go to login
				http.SetCookie(w, &http.Cookie{
					Path:     "/",
					Name:     "refresh_token",
					Value:    "",
					MaxAge:   -1,
					SameSite: http.SameSiteNoneMode,
				})
				redirect(w, loginLocation)
				return
			}
			if resp.Status() != http.StatusOK {
				http.Error(w, http.StatusText(resp.Status()), resp.Status())
				return
			}

			var body map[string]any
			err = json.Unmarshal(resp.Body(), &body)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			accessToken, _ := body["access_token"].(string)
			expiresIn, _ := body["expires_in"].(float64)
			newRefreshToken, _ := body["refresh_token"].(string)

			http.SetCookie(w, &http.Cookie{
				Path:     "/",
				Name:     "access_token",
				Value:    accessToken,
				MaxAge:   int(expiresIn),
				SameSite: http.SameSiteNoneMode,
			})
			http.SetCookie(w, &http.Cookie{
				Path:     "/",
				Name:     "refresh_token",
				Value:    newRefreshToken,
				MaxAge:   60 * 60 * 24 * 365,
				SameSite: http.SameSiteNoneMode,
			})

			r.Header.Set("authorization", "Bearer "+accessToken)
			h.ServeHTTP(w, r)
		})
	}
}

func redirect(w http.ResponseWriter, location string) {
	w.Header().Set("location", location)
	w.WriteHeader(http.StatusTemporaryRedirect)
}

func refreshTokens(bearerServer *oauth.BearerServer, refreshToken string) (httpx.ResponseBuffer, error) {
	body := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	req, err := http.NewRequest("POST", "/", strings.NewReader(body.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

	resp := httpx.NewResponseBuffer()
	bearerServer.UserCredentials(resp, req)
	return resp, nil
}
