package domain

// Token is what the token endpoint returns: a signed bearer access token.
// There is no refresh token and no server-side revocation; tokens are valid
// until their natural expiry.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // always "bearer"
	ExpiresIn   int64  `json:"expires_in"` // seconds until expiry
}
