package gate

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"donorprofile/internal/profile/models"
)

const (
	// captcha tokens are valid for two minutes after issue
	tokenLifetime = 2 * time.Minute
	previewTTL    = 30 * time.Minute
)

// spentTokens remembers captcha tokens already sent to the verifier.
type spentTokens struct {
	c *gocache.Cache
}

func newSpentTokens() *spentTokens {
	return &spentTokens{c: gocache.New(tokenLifetime, time.Minute)}
}

func (t *spentTokens) seen(token string) bool {
	_, ok := t.c.Get(token)
	return ok
}

// spend marks token as used. It returns false if it already was.
func (t *spentTokens) spend(token string) bool {
	return t.c.Add(token, struct{}{}, gocache.DefaultExpiration) == nil
}

// previews keeps the last partial profile per UUID so the verification form
// can be re-rendered after a failed submit without another upstream call.
type previews struct {
	c *gocache.Cache
}

func newPreviews() *previews {
	return &previews{c: gocache.New(previewTTL, 5*time.Minute)}
}

func (p *previews) get(uuid string) *models.Profile {
	v, ok := p.c.Get(strings.ToLower(uuid))
	if !ok {
		return nil
	}
	profile, ok := v.(models.Profile)
	if !ok {
		return nil
	}
	return &profile
}

func (p *previews) put(uuid string, profile models.Profile) {
	p.c.SetDefault(strings.ToLower(uuid), profile)
}
