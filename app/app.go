package app

import (
	"github.com/go-chi/oauth"

	"github.com/formdesk/formdesk/builder"
	"github.com/formdesk/formdesk/config"
	"github.com/formdesk/formdesk/store"
)

type App struct {
	*oauth.BearerServer
	config.Config

	Store    *store.Store
	Sessions *builder.Registry
}
