package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type Method string

const (
	MethodFacebook Method = "facebook"
	MethodGoogle   Method = "google"
)

// Profile is the verified identity returned by the external provider.
type Profile struct {
	ExternalID string
	Name       string
	Email      string
}

// Verifier exchanges a provider token for a verified external user identity.
// Provider internals are out of core scope; the core only consumes this
// contract.
type Verifier interface {
	Verify(ctx context.Context, token string, method Method) (*Profile, error)
}

type facebookDebugResponse struct {
	Data struct {
		UserID  string `json:"user_id"`
		IsValid bool   `json:"is_valid"`
	} `json:"data"`
}

type googleTokenInfoResponse struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HTTPVerifier calls the providers' token-inspection endpoints.
type HTTPVerifier struct {
	client      *resty.Client
	facebookURL string
	googleURL   string
	appToken    string
}

func NewHTTPVerifier(appToken string) *HTTPVerifier {
	return &HTTPVerifier{
		client:      resty.New().SetTimeout(10 * time.Second),
		facebookURL: "https://graph.facebook.com/debug_token",
		googleURL:   "https://oauth2.googleapis.com/tokeninfo",
		appToken:    appToken,
	}
}

func (v *HTTPVerifier) Verify(ctx context.Context, token string, method Method) (*Profile, error) {
	switch method {
	case MethodFacebook:
		return v.verifyFacebook(ctx, token)
	case MethodGoogle:
		return v.verifyGoogle(ctx, token)
	default:
		return nil, fmt.Errorf("unknown identity method %q", method)
	}
}

func (v *HTTPVerifier) verifyFacebook(ctx context.Context, token string) (*Profile, error) {
	var out facebookDebugResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetQueryParam("input_token", token).
		SetQueryParam("access_token", v.appToken).
		SetResult(&out).
		Get(v.facebookURL)
	if err != nil {
		return nil, fmt.Errorf("facebook token verification failed: %w", err)
	}
	if resp.IsError() || !out.Data.IsValid {
		return nil, fmt.Errorf("facebook token is not valid")
	}
	return &Profile{ExternalID: out.Data.UserID}, nil
}

func (v *HTTPVerifier) verifyGoogle(ctx context.Context, token string) (*Profile, error) {
	var out googleTokenInfoResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetQueryParam("id_token", token).
		SetResult(&out).
		Get(v.googleURL)
	if err != nil {
		return nil, fmt.Errorf("google token verification failed: %w", err)
	}
	if resp.IsError() || out.Sub == "" {
		return nil, fmt.Errorf("google token is not valid")
	}
	return &Profile{ExternalID: out.Sub, Name: out.Name, Email: out.Email}, nil
}
