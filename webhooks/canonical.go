package webhooks

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// OrderedFieldsDigest hashes the values in their given order, appends the
// secret, lower-cases the whole string, and returns the SHA-512 hex digest.
// Missing fields contribute an empty string so the field order stays fixed
// regardless of which keys a delivery carries.
func OrderedFieldsDigest(values []string, secret string) string {
	var builder strings.Builder
	for _, value := range values {
		builder.WriteString(value)
	}
	builder.WriteString(secret)
	sum := sha512.Sum512([]byte(strings.ToLower(builder.String())))
	return hex.EncodeToString(sum[:])
}

// SortedQueryDigest builds a query string from the fields in lexicographic
// key order, skipping empty values, url-encodes each value (space becomes
// "+"), optionally appends "&passphrase=<encoded>", and returns the MD5 hex
// digest of the result.
func SortedQueryDigest(fields map[string]string, passphrase string) string {
	keys := make([]string, 0, len(fields))
	for key, value := range fields {
		if strings.TrimSpace(value) == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+url.QueryEscape(fields[key]))
	}
	payload := strings.Join(pairs, "&")
	if passphrase != "" {
		payload += "&passphrase=" + url.QueryEscape(passphrase)
	}
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// BodyHMACDigest returns the HMAC-SHA256 hex digest of the raw body keyed
// by secret, with the given prefix prepended (for example "sha256=").
func BodyHMACDigest(body []byte, secret, prefix string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return prefix + hex.EncodeToString(mac.Sum(nil))
}
