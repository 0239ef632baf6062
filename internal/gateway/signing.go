package gateway

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"strings"
)

var (
	toURLSafe   = strings.NewReplacer("/", "_", "+", "-")
	fromURLSafe = strings.NewReplacer("_", "/", "-", "+")
)

// EncodeURLSafeBase64 is standard base64 with '/' -> '_' and '+' -> '-'.
// Padding is kept.
func EncodeURLSafeBase64(b []byte) string {
	return toURLSafe.Replace(base64.StdEncoding.EncodeToString(b))
}

func DecodeURLSafeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(fromURLSafe.Replace(s))
}

// EncodeParams joins params as k=v pairs in their insertion order.
// Keys and values are percent-encoded per RFC 3986; empty values are skipped.
func EncodeParams(params *Params) string {
	var sb strings.Builder
	for _, kv := range params.pairs {
		if kv.value == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(percentEncode(kv.key))
		sb.WriteByte('=')
		sb.WriteString(percentEncode(kv.value))
	}
	return sb.String()
}

// percentEncode escapes everything outside the RFC 3986 unreserved set.
// url.QueryEscape would emit '+' for spaces, which the gateway does not expect.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Sign returns md5(payload || secret) as lowercase hex. This is the
// gateway's ss1 scheme and is not a MAC.
func Sign(payload, secret string) string {
	sum := md5.Sum([]byte(payload + secret))
	return hex.EncodeToString(sum[:])
}

// parseQuery splits a decoded payload into a flat map. Keys without '='
// map to "", and later duplicates overwrite earlier ones.
func parseQuery(query string) (map[string]string, error) {
	out := make(map[string]string)
	if query == "" {
		return out, nil
	}
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, callbackDataError("malformed key %q: %v", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, callbackDataError("malformed value for %q: %v", key, err)
		}
		out[key] = value
	}
	return out, nil
}
