package garmin

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/oauth2"
)

// ticketRe extracts the service ticket embedded in the SSO response page.
var ticketRe = regexp.MustCompile(`embed\?ticket=([^"]+)"`)

// ssoProvider is the built-in SessionProvider. It performs the Garmin SSO
// sign-in handshake, exchanges the resulting service ticket for an OAuth
// token, and keeps requests authenticated via a refreshing token source.
type ssoProvider struct {
	domain string
	// plain client for the SSO handshake itself; carries the SSO cookies
	plain *http.Client
	// auth wraps the token source and attaches bearer tokens
	auth   *http.Client
	source oauth2.TokenSource
}

// sessionState is the provider-owned shape of the opaque Session blob.
// Nothing outside this file depends on it.
type sessionState struct {
	Domain string        `json:"domain"`
	Token  *oauth2.Token `json:"token"`
}

// NewSSOProvider returns a SessionProvider that logs in through the Garmin
// SSO frontend. domain is "garmin.com" or "garmin.cn".
func NewSSOProvider(domain string) SessionProvider {
	jar, _ := cookiejar.New(nil)
	return &ssoProvider{
		domain: domain,
		plain: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
			Jar: jar,
		},
	}
}

func (p *ssoProvider) ssoURL() string      { return "https://sso." + p.domain + "/sso" }
func (p *ssoProvider) exchangeURL() string { return "https://connectapi." + p.domain + "/oauth-exchange/exchange" }

func (p *ssoProvider) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  "https://connectapi." + p.domain + "/oauth-service/oauth/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// install activates a token, wiring up transparent refresh for all
// subsequent requests.
func (p *ssoProvider) install(ctx context.Context, tok *oauth2.Token) {
	cfg := p.oauthConfig()
	p.source = oauth2.ReuseTokenSource(tok, cfg.TokenSource(ctx, tok))
	p.auth = oauth2.NewClient(ctx, p.source)
}

func (p *ssoProvider) Login(ctx context.Context, creds Credentials) (Session, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, &AuthenticationError{Reason: "no credentials provided"}
	}

	csrf, err := p.fetchCSRFToken(ctx)
	if err != nil {
		return nil, err
	}

	ticket, err := p.submitSignin(ctx, creds, csrf)
	if err != nil {
		return nil, err
	}

	tok, err := p.exchangeTicket(ctx, ticket)
	if err != nil {
		return nil, err
	}

	p.install(ctx, tok)
	return p.sessionBlob()
}

func (p *ssoProvider) Resume(ctx context.Context, sess Session) (Session, error) {
	var state sessionState
	if err := json.Unmarshal(sess, &state); err != nil {
		return nil, &AuthenticationError{Reason: "stored session is unreadable"}
	}
	if state.Token == nil || state.Token.AccessToken == "" {
		return nil, &AuthenticationError{Reason: "stored session has no token"}
	}
	if !state.Token.Valid() && state.Token.RefreshToken == "" {
		return nil, &AuthenticationError{Reason: "stored session expired and cannot be refreshed"}
	}
	if state.Domain != "" {
		p.domain = state.Domain
	}

	p.install(ctx, state.Token)
	return p.sessionBlob()
}

func (p *ssoProvider) Do(req *http.Request) (*http.Response, error) {
	if p.auth == nil {
		return nil, &AuthenticationError{Reason: "no active session, login first"}
	}
	return p.auth.Do(req)
}

func (p *ssoProvider) DumpSession(dir string) error {
	sess, err := p.sessionBlob()
	if err != nil {
		return err
	}
	return writeSessionBlob(dir, sess)
}

func (p *ssoProvider) LoadSession(dir string) (Session, error) {
	return readSessionBlob(dir)
}

// sessionBlob snapshots the current session state, including any token the
// source refreshed behind our back.
func (p *ssoProvider) sessionBlob() (Session, error) {
	if p.source == nil {
		return nil, &AuthenticationError{Reason: "no active session"}
	}
	tok, err := p.source.Token()
	if err != nil {
		return nil, &AuthenticationError{Reason: fmt.Sprintf("token refresh failed: %v", err)}
	}
	data, err := json.Marshal(sessionState{Domain: p.domain, Token: tok})
	if err != nil {
		return nil, err
	}
	return Session(data), nil
}

// signinParams mirrors the query parameters the embedded SSO widget sends.
func (p *ssoProvider) signinParams() url.Values {
	base := "https://connect." + p.domain
	params := url.Values{}
	params.Set("id", "gauth-widget")
	params.Set("embedWidget", "true")
	params.Set("gauthHost", p.ssoURL())
	params.Set("service", base+"/modern")
	params.Set("source", p.ssoURL()+"/signin")
	params.Set("redirectAfterAccountLoginUrl", base+"/modern")
	params.Set("redirectAfterAccountCreationUrl", base+"/modern")
	return params
}

// fetchCSRFToken loads the sign-in page and pulls the CSRF input out of
// the form.
func (p *ssoProvider) fetchCSRFToken(ctx context.Context) (string, error) {
	signin := p.ssoURL() + "/signin?" + p.signinParams().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signin, nil)
	if err != nil {
		return "", err
	}

	resp, err := p.plain.Do(req)
	if err != nil {
		return "", &ConnectionError{URL: signin, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &AuthenticationError{Status: resp.StatusCode, Reason: "sign-in page unavailable"}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse sign-in page: %w", err)
	}

	csrf, ok := doc.Find(`input[name="_csrf"]`).Attr("value")
	if !ok || csrf == "" {
		return "", &AuthenticationError{Reason: "csrf token not found on sign-in page"}
	}
	return csrf, nil
}

// submitSignin posts the credentials and extracts the service ticket from
// the response page.
func (p *ssoProvider) submitSignin(ctx context.Context, creds Credentials, csrf string) (string, error) {
	form := url.Values{}
	form.Set("username", creds.Email)
	form.Set("password", creds.Password)
	form.Set("embed", "true")
	form.Set("_csrf", csrf)

	signin := p.ssoURL() + "/signin?" + p.signinParams().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signin, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("referer", signin)

	resp, err := p.plain.Do(req)
	if err != nil {
		return "", &ConnectionError{URL: signin, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusUnauthorized:
		return "", &AuthenticationError{Status: resp.StatusCode, Reason: "credentials rejected"}
	case http.StatusTooManyRequests:
		return "", &RateLimitError{Status: resp.StatusCode}
	default:
		return "", &AuthenticationError{Status: resp.StatusCode, Reason: "unexpected sign-in response"}
	}

	matches := ticketRe.FindSubmatch(body)
	if len(matches) < 2 {
		// No ticket on a 200 page usually means wrong password or an MFA
		// prompt we cannot answer here.
		return "", &AuthenticationError{Status: resp.StatusCode, Reason: "login did not produce a service ticket (bad credentials or MFA required)"}
	}
	return string(matches[1]), nil
}

// exchangeTicket trades the SSO service ticket for an OAuth token.
func (p *ssoProvider) exchangeTicket(ctx context.Context, ticket string) (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("ticket", ticket)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.exchangeURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")

	resp, err := p.plain.Do(req)
	if err != nil {
		return nil, &ConnectionError{URL: p.exchangeURL(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &AuthenticationError{Status: resp.StatusCode, Reason: "ticket exchange rejected"}
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(body), &payload); err != nil {
		return nil, &DecodeError{Path: "/oauth-exchange/exchange", Size: len(body)}
	}
	if payload.AccessToken == "" {
		return nil, &AuthenticationError{Reason: "ticket exchange returned no access token"}
	}

	tok := &oauth2.Token{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		TokenType:    payload.TokenType,
	}
	if payload.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	}
	return tok, nil
}
