package session

// Record is one persisted account session exactly as it appears in
// sessions.json. The cookie (and the optional app tags) hold vault
// references, never plaintext, once any encryption backend works.
type Record struct {
	Cookie      string `json:"cookie"`
	Timestamp   int64  `json:"timestamp"`
	CompanyName string `json:"company_name"`
	LoginMethod string `json:"login_method"`
	AppPlatform string `json:"app_platform,omitempty"`
	AppVersion  string `json:"app_version,omitempty"`
}

// Bundle is the decrypted credential set needed to authenticate a remote
// request: the session token plus optional auxiliary cookies.
type Bundle struct {
	SessionToken string
	AppPlatform  string
	AppVersion   string
}
