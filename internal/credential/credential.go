package credential

import (
	"encoding/base64"
	"strings"
)

// Authorization header scheme keywords. GitHub uses a lowercase "token"
// keyword for personal access tokens, so the casing here matches what goes
// on the wire in challenges.
const (
	BasicScheme = "Basic"
	TokenScheme = "token"
)

// Kind identifies which credential variant was parsed from a header.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindBasic
	KindToken
)

// Credential is the typed result of parsing an Authorization header value.
// Only the fields matching Kind are populated.
type Credential struct {
	Kind     Kind
	Username string
	Password string
	Token    string
}

// Parse extracts a credential from a raw Authorization header value.
//
// The basic scheme is parsed leniently: malformed base64 or a missing colon
// separator produces a basic credential with whatever username could be
// recovered and an empty password, not an error. Callers reject credentials
// without a username.
func Parse(header string) Credential {
	if header == "" {
		return Credential{Kind: KindUnrecognized}
	}

	scheme, rest, _ := strings.Cut(header, " ")

	switch strings.ToLower(scheme) {
	case strings.ToLower(BasicScheme):
		username, password := splitBasicPair(rest)
		return Credential{
			Kind:     KindBasic,
			Username: username,
			Password: password,
		}
	case strings.ToLower(TokenScheme):
		return Credential{Kind: KindToken, Token: rest}
	default:
		return Credential{Kind: KindUnrecognized}
	}
}

// splitBasicPair decodes a base64 "username:password" pair. Invalid base64
// keeps the bytes decoded up to the first error, matching the lenient
// behavior clients have come to rely on.
func splitBasicPair(encoded string) (username, password string) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		if raw, rawErr := base64.RawStdEncoding.DecodeString(encoded); rawErr == nil {
			decoded = raw
		}
	}

	username, password, _ = strings.Cut(string(decoded), ":")
	return username, password
}

// BasicAuthorization builds a Basic Authorization header value from a
// username/password pair.
func BasicAuthorization(username, password string) string {
	pair := username + ":" + password
	return BasicScheme + " " + base64.StdEncoding.EncodeToString([]byte(pair))
}
