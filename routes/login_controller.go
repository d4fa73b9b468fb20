package routes

import (
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"

	"github.com/formdesk/formdesk/app"
	"github.com/formdesk/formdesk/httpx"
	"github.com/formdesk/formdesk/log"
)

func Signup(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "signup.parse_body")
			return
		}
		if body.Username == "" || body.Password == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "signup.credentials",
				"username and password are required")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.LogInternalError(w, "signup.hash", err)
			return
		}

		err = app.Store.CreateUser(r.Context(), body.Username, hash)
		if err != nil {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "signup.insert_user")
			return
		}

		w.WriteHeader(http.StatusCreated)
	}
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		}
		r.Body = io.NopCloser(strings.NewReader(body.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(body.Encode())))
		app.UserCredentials(w, r)
	}
}

var reRefreshToken = regexp.MustCompile(`(?i)^refresh\s+(.*)`)

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("authorization")
		match := reRefreshToken.FindStringSubmatch(auth)
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}
		token := match[1]

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {token},
		}

		req, err := http.NewRequest("POST", "/", strings.NewReader(body.Encode()))
		if err != nil {
			httpx.LogStatus(w, http.StatusInternalServerError, log.DebugLevel, "refresh.new_request")
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		resp.Flush(w)
	}
}
