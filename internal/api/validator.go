// Package api talks to the remote service to check session liveness.
package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/config"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/logging"
	"github.com/justonlyforyou/shippingmanager-copilot/internal/session"
)

// ID is a remote account identifier. The service is inconsistent about its
// wire type and serves both a JSON number and a string; either form decodes
// to its literal text.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n)
	return nil
}

func (id ID) String() string { return string(id) }

// Profile is the remote account identity returned by a successful
// validation.
type Profile struct {
	ID          ID     `json:"id"`
	CompanyName string `json:"company_name"`
}

type userEnvelope struct {
	User *Profile `json:"user"`
}

// ValidSession is a live stored session together with its fetched profile
// and decrypted credentials.
type ValidSession struct {
	AccountID   string
	CompanyName string
	LoginMethod string
	Timestamp   int64
	Bundle      session.Bundle
	Profile     *Profile
}

// ExpiredSession identifies a stored session that failed validation.
type ExpiredSession struct {
	AccountID   string
	CompanyName string
	LoginMethod string
}

// Validator checks credentials against the fixed settings endpoint.
type Validator struct {
	endpoint   string
	cookieName string
	userAgent  string
	client     *http.Client
	log        logging.Logger
}

// NewValidator builds a Validator from cfg. TLS certificate verification is
// disabled on purpose: the upstream service serves through rotating CDN
// certificates that desktop installs routinely fail to verify, and the
// cookie being sent is the secret being tested, not obtained.
func NewValidator(cfg *config.Config, log logging.Logger) *Validator {
	return &Validator{
		endpoint:   cfg.SettingsURL(),
		cookieName: cfg.CookieName,
		userAgent:  cfg.UserAgent,
		client: &http.Client{
			Timeout: cfg.ValidateTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		log: log,
	}
}

// Validate POSTs the credential bundle to the settings endpoint and returns
// the account profile when the session is live. Network failures, non-200
// statuses and responses without a user id all return nil: the caller
// cannot, and must not, distinguish "expired" from "unreachable".
func (v *Validator) Validate(ctx context.Context, b session.Bundle, accountID string) *Profile {
	if b.SessionToken == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, nil)
	if err != nil {
		v.log.Warn(ctx, "session validation error", "account_id", accountID, "error", err)
		return nil
	}
	req.Header.Set("Cookie", v.cookieHeader(b))
	req.Header.Set("User-Agent", v.userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Debug(ctx, "session validation request failed", "account_id", accountID, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var env userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		v.log.Debug(ctx, "session validation parse failed", "account_id", accountID, "error", err)
		return nil
	}
	if env.User == nil || env.User.ID.String() == "" {
		return nil
	}
	return env.User
}

func (v *Validator) cookieHeader(b session.Bundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s=%s", v.cookieName, b.SessionToken)
	if b.AppPlatform != "" {
		fmt.Fprintf(&sb, "; app_platform=%s", b.AppPlatform)
	}
	if b.AppVersion != "" {
		fmt.Fprintf(&sb, "; app_version=%s", b.AppVersion)
	}
	return sb.String()
}

// ValidateAll decrypts and validates every stored record, partitioning the
// store into live and dead sessions. Records whose credentials cannot be
// decrypted count as expired. The valid list is ordered by descending
// timestamp, most recently used first. A display ordering only.
func (v *Validator) ValidateAll(ctx context.Context, st *session.Store) ([]ValidSession, []ExpiredSession) {
	sessions := st.Load(ctx)
	if len(sessions) == 0 {
		v.log.Info(ctx, "no saved sessions found")
		return nil, nil
	}
	v.log.Info(ctx, "validating saved sessions", "count", len(sessions))

	var valid []ValidSession
	var expired []ExpiredSession

	for accountID, rec := range sessions {
		bundle, ok := st.DecryptBundle(ctx, accountID, rec)
		if !ok {
			v.log.Warn(ctx, "credential missing, cannot decrypt", "account_id", accountID)
			expired = append(expired, ExpiredSession{
				AccountID:   accountID,
				CompanyName: rec.CompanyName,
				LoginMethod: rec.LoginMethod,
			})
			continue
		}

		profile := v.Validate(ctx, bundle, accountID)
		if profile == nil {
			v.log.Info(ctx, "session expired", "account_id", accountID, "company", rec.CompanyName)
			expired = append(expired, ExpiredSession{
				AccountID:   accountID,
				CompanyName: rec.CompanyName,
				LoginMethod: rec.LoginMethod,
			})
			continue
		}

		company := profile.CompanyName
		if company == "" {
			company = rec.CompanyName
		}
		valid = append(valid, ValidSession{
			AccountID:   accountID,
			CompanyName: company,
			LoginMethod: rec.LoginMethod,
			Timestamp:   rec.Timestamp,
			Bundle:      bundle,
			Profile:     profile,
		})
	}

	sort.Slice(valid, func(i, j int) bool { return valid[i].Timestamp > valid[j].Timestamp })

	v.log.Info(ctx, "session validation finished", "valid", len(valid), "expired", len(expired))
	return valid, expired
}
