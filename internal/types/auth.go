package types

import "github.com/golang-jwt/jwt/v5"

// AuthRequest is the expected JSON body for POST /auth/authenticate.
type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the signed bearer token.
type AuthResponse struct {
	AccessToken string `json:"access_token" xml:"accessToken"`
}

// CityUser is the identity the credential check resolves to. The demo
// validator fabricates a fixed identity instead of consulting a user store.
type CityUser struct {
	ID        int
	Username  string
	FirstName string
	LastName  string
	City      string
}

// Claims are the custom claims embedded in the access token. The city claim
// drives the same-city authorization policy on point of interest routes.
type Claims struct {
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	City       string `json:"city"`
	jwt.RegisteredClaims
}
