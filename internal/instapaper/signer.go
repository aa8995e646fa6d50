package instapaper

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gomodule/oauth1/oauth"
)

// signer signs requests with OAuth1 HMAC-SHA1. Before login there is no
// token and requests are signed with the consumer credentials only.
type signer struct {
	oauth *oauth.Client
	token *oauth.Credentials
	base  *http.Client
}

func newSigner(consumerKey, consumerSecret string, base *http.Client) *signer {
	return &signer{
		oauth: &oauth.Client{
			Credentials:     oauth.Credentials{Token: consumerKey, Secret: consumerSecret},
			SignatureMethod: oauth.HMACSHA1,
		},
		base: base,
	}
}

func (s *signer) setToken(token, secret string) {
	s.token = &oauth.Credentials{Token: token, Secret: secret}
}

func (s *signer) tokenPair() (token, secret string, ok bool) {
	if s.token == nil {
		return "", "", false
	}
	return s.token.Token, s.token.Secret, s.token.Token != ""
}

// do signs req, including the form body parameters, and sends it with the
// base client.
func (s *signer) do(req *http.Request, form url.Values) (*http.Response, error) {
	if err := s.oauth.SetAuthorizationHeader(req.Header, s.token, req.Method, req.URL, form); err != nil {
		return nil, fmt.Errorf("failed to sign request: %w", err)
	}
	return s.base.Do(req)
}
