package portalcore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/veltacloud/portalcore/credstore"
)

// AuthRequest defines a public type used by portalcore APIs.
//
// AuthRequest instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthRequest struct {
	// ValidationURL is the external page where the account holder reviews
	// and approves the requested grant. The caller must redirect there.
	ValidationURL string
	// State is an opaque nonce bound to this authorization request.
	State string
}

type accessRule struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

type credentialRequest struct {
	AccessRules []accessRule `json:"accessRules"`
	Redirection string       `json:"redirection,omitempty"`
}

type credentialResponse struct {
	ConsumerKey   string `json:"consumerKey"`
	State         string `json:"state"`
	ValidationURL string `json:"validationUrl"`
}

type meResponse struct {
	Nichandle    string `json:"nichandle"`
	Email        string `json:"email"`
	FirstName    string `json:"firstname"`
	Name         string `json:"name"`
	SupportLevel string `json:"supportLevel"`
	AuthMethod   string `json:"auth"`
	IsTrusted    bool   `json:"isTrusted"`
}

// BeginDelegatedAuth describes the begindelegatedauth operation and its observable behavior.
//
// BeginDelegatedAuth may return an error when input validation, dependency calls, or security checks fail.
// BeginDelegatedAuth does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Portal) BeginDelegatedAuth(ctx context.Context, appKey, appSecret string) (*AuthRequest, error) {
	if p == nil {
		return nil, ErrPortalNotReady
	}
	if appKey == "" || appSecret == "" {
		return nil, fmt.Errorf("%w: application key pair required", ErrAuthRequestRejected)
	}

	req := credentialRequest{
		AccessRules: []accessRule{
			{Method: "GET", Path: "/*"},
			{Method: "POST", Path: "/*"},
			{Method: "PUT", Path: "/*"},
			{Method: "DELETE", Path: "/*"},
		},
		Redirection: p.config.API.Redirection,
	}

	// The bootstrap request authenticates with the application pair only;
	// the consumer key does not exist until the account holder validates.
	bootstrap := p.client.WithCredential(appKey, appSecret, "")

	var resp credentialResponse
	if err := bootstrap.Post(ctx, "/auth/credential", req, &resp); err != nil {
		p.metricInc(MetricAuthRequestFailure)
		p.emitAudit(ctx, auditEventAuthRequestFailure, false, "", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrAuthRequestFailed, err)
	}
	if resp.ConsumerKey == "" || resp.ValidationURL == "" {
		p.metricInc(MetricAuthRequestFailure)
		p.emitAudit(ctx, auditEventAuthRequestFailure, false, "", ErrAuthRequestRejected, nil)
		return nil, fmt.Errorf("%w: incomplete credential response", ErrAuthRequestRejected)
	}

	cred := credstore.Credential{
		AppKey:      appKey,
		AppSecret:   appSecret,
		ConsumerKey: resp.ConsumerKey,
	}
	if err := p.store.Save(ctx, &credstore.Record{Credential: cred, SavedAt: time.Now().UTC()}); err != nil {
		p.metricInc(MetricAuthRequestFailure)
		p.emitAudit(ctx, auditEventAuthRequestFailure, false, "", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	p.setSession(Session{
		Credential: &Credential{AppKey: cred.AppKey, AppSecret: cred.AppSecret, ConsumerKey: cred.ConsumerKey},
		Status:     StatusPendingValidation,
	})

	state := resp.State
	if state == "" {
		state = uuid.NewString()
	}

	p.metricInc(MetricAuthRequestSuccess)
	p.emitAudit(ctx, auditEventAuthRequestSuccess, true, "", nil, func() map[string]string {
		return map[string]string{"state": state}
	})

	return &AuthRequest{ValidationURL: resp.ValidationURL, State: state}, nil
}

// Rehydrate describes the rehydrate operation and its observable behavior.
//
// Rehydrate may return an error when input validation, dependency calls, or security checks fail.
// Rehydrate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Portal) Rehydrate(ctx context.Context) (Session, error) {
	if p == nil {
		return Session{}, ErrPortalNotReady
	}

	rec, err := p.store.Load(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if rec == nil || rec.Credential.ConsumerKey == "" {
		p.setSession(Session{Status: StatusUnauthenticated})
		return p.Current(), nil
	}

	cred := Credential{
		AppKey:      rec.Credential.AppKey,
		AppSecret:   rec.Credential.AppSecret,
		ConsumerKey: rec.Credential.ConsumerKey,
	}

	client := p.client.WithCredential(cred.AppKey, cred.AppSecret, cred.ConsumerKey)
	var me meResponse
	if err := client.Get(ctx, "/me", &me); err != nil {
		// The stored credential no longer resolves. Purge it so the next
		// attempt starts from a clean slate instead of looping on a dead key.
		if clearErr := p.store.Clear(ctx); clearErr != nil {
			p.emitAudit(ctx, auditEventSessionResolutionFail, false, "", clearErr, nil)
		}
		p.setSession(Session{Status: StatusUnauthenticated})
		p.metricInc(MetricSessionResolutionFailed)
		p.emitAudit(ctx, auditEventSessionResolutionFail, false, "", err, nil)
		return p.Current(), fmt.Errorf("%w: %v", ErrSessionResolution, err)
	}

	sess := Session{
		Credential: &cred,
		User: &UserProfile{
			Nichandle:    me.Nichandle,
			Email:        me.Email,
			FirstName:    me.FirstName,
			Name:         me.Name,
			SupportLevel: me.SupportLevel,
			AuthMethod:   me.AuthMethod,
			Trusted:      me.IsTrusted,
		},
		Status: StatusAuthenticated,
	}
	p.setSession(sess)

	rec.Profile = &credstore.Profile{
		Nichandle:    me.Nichandle,
		Email:        me.Email,
		FirstName:    me.FirstName,
		Name:         me.Name,
		SupportLevel: me.SupportLevel,
		AuthMethod:   me.AuthMethod,
		Trusted:      me.IsTrusted,
	}
	if err := p.store.Save(ctx, rec); err != nil {
		// Resolution already succeeded, the refreshed profile cache is
		// best effort.
		p.emitAudit(ctx, auditEventSessionRehydrated, true, "", err, nil)
	}

	p.metricInc(MetricSessionRehydrated)
	p.emitAudit(ctx, auditEventSessionRehydrated, true, "", nil, func() map[string]string {
		return map[string]string{"nichandle": me.Nichandle}
	})

	return p.Current(), nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Portal) Logout(ctx context.Context) error {
	if p == nil {
		return ErrPortalNotReady
	}

	if err := p.store.Clear(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	p.setSession(Session{Status: StatusUnauthenticated})
	p.controller.reset()

	p.metricInc(MetricSessionLogout)
	p.emitAudit(ctx, auditEventSessionLogout, true, "", nil, nil)
	return nil
}

// SessionToken describes the sessiontoken operation and its observable behavior.
//
// SessionToken may return an error when input validation, dependency calls, or security checks fail.
// SessionToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Portal) SessionToken(ctx context.Context) (string, error) {
	if p == nil {
		return "", ErrPortalNotReady
	}
	if p.tokens == nil {
		return "", ErrSessionTokenDisabled
	}

	sess := p.Current()
	if sess.Status != StatusAuthenticated || sess.User == nil {
		return "", ErrNotAuthenticated
	}

	signed, err := p.tokens.Mint(sess.User.Nichandle, sess.User.Email, sess.User.AuthMethod)
	if err != nil {
		return "", err
	}

	p.metricInc(MetricSessionTokenIssued)
	p.emitAudit(ctx, auditEventSessionTokenIssued, true, "", nil, func() map[string]string {
		return map[string]string{"nichandle": sess.User.Nichandle}
	})
	return signed, nil
}
