package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	// ErrInvalidToken covers malformed or tampered download tokens.
	ErrInvalidToken = errors.New("invalid download token")
	// ErrTokenExpired is returned once the token is past its expiry.
	ErrTokenExpired = errors.New("download token expired")
)

const defaultDownloadTTL = 24 * time.Hour

type downloadClaims struct {
	JobID     string `json:"j"`
	Path      string `json:"p"`
	ExpiresAt int64  `json:"e"`
}

// DownloadSigner issues HMAC-SHA256 tokens that grant access to one export
// file for a limited time. Tokens look like <payload>.<signature>, both
// base64url without padding.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewDownloadSigner builds a signer. A non-positive ttl falls back to 24h.
func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	if ttl <= 0 {
		ttl = defaultDownloadTTL
	}
	return &DownloadSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate signs a token for jobID and the stored relPath.
func (s *DownloadSigner) Generate(jobID, relPath string) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("download signing secret is empty")
	}
	if jobID == "" || relPath == "" {
		return "", time.Time{}, errors.New("job id and path are required")
	}

	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	payload, err := json.Marshal(downloadClaims{JobID: jobID, Path: relPath, ExpiresAt: expiresAt.Unix()})
	if err != nil {
		return "", time.Time{}, err
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + s.sign(encoded), expiresAt, nil
}

// Parse verifies the token. With allowExpired the expiry check is skipped so
// cleanup can still locate the file of an expired job.
func (s *DownloadSigner) Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || sig == "" {
		return "", "", time.Time{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(encoded))) {
		return "", "", time.Time{}, ErrInvalidToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", time.Time{}, ErrInvalidToken
	}
	var claims downloadClaims
	if err := json.Unmarshal(raw, &claims); err != nil || claims.JobID == "" || claims.Path == "" {
		return "", "", time.Time{}, ErrInvalidToken
	}

	expiresAt = time.Unix(claims.ExpiresAt, 0)
	if !allowExpired && !s.now().Before(expiresAt) {
		return "", "", time.Time{}, ErrTokenExpired
	}
	return claims.JobID, claims.Path, expiresAt, nil
}

func (s *DownloadSigner) sign(encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(encoded)) //nolint:errcheck
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
