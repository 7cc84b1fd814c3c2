package entity

// AuthToken is issued by the identity provider and handed back to the caller
// as-is. It is never persisted.
type AuthToken struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	TokenType        string `json:"token_type"`
}

// ProviderStatus is a read-only snapshot of the provider-side account flags.
type ProviderStatus struct {
	EmailVerified      bool
	MustChangePassword bool
}
