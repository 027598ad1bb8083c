package dataverse

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// AuthType selects how tokens are acquired for a connection.
type AuthType string

const (
	// AuthClientSecret uses the OAuth2 client credentials grant.
	AuthClientSecret AuthType = "ClientSecret"
	// AuthOAuth uses the OAuth2 resource owner password grant.
	AuthOAuth AuthType = "OAuth"
)

// DefaultAuthority is the Microsoft identity platform host used when the
// connection string does not name one.
const DefaultAuthority = "https://login.microsoftonline.com"

// ErrInvalidConnectionString is returned for connection strings that cannot be used.
var ErrInvalidConnectionString = errors.New("invalid connection string")

// ConnectionString is the parsed form of a Dataverse connection string.
type ConnectionString struct {
	AuthType     AuthType
	URL          string
	ClientID     string
	ClientSecret string
	TenantID     string
	Username     string
	Password     string
	Authority    string
}

// keyAliases maps lower-cased connection string keys to canonical names.
var keyAliases = map[string]string{
	"authtype":     "authtype",
	"url":          "url",
	"serviceuri":   "url",
	"server":       "url",
	"clientid":     "clientid",
	"appid":        "clientid",
	"clientsecret": "clientsecret",
	"secret":       "clientsecret",
	"tenantid":     "tenantid",
	"username":     "username",
	"password":     "password",
	"authority":    "authority",
}

// ParseConnectionString parses a `key=value;key=value` connection string.
// Keys are case-insensitive and values may be wrapped in single or double quotes.
func ParseConnectionString(raw string) (*ConnectionString, error) {
	segments, err := splitSegments(raw)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	for _, segment := range segments {
		idx := strings.Index(segment, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("%w: malformed segment %q", ErrInvalidConnectionString, redactSegment(segment))
		}
		key := strings.ToLower(strings.TrimSpace(segment[:idx]))
		canonical, ok := keyAliases[key]
		if !ok {
			continue
		}
		values[canonical] = unquote(strings.TrimSpace(segment[idx+1:]))
	}

	cs := &ConnectionString{
		URL:          strings.TrimRight(values["url"], "/"),
		ClientID:     values["clientid"],
		ClientSecret: values["clientsecret"],
		TenantID:     values["tenantid"],
		Username:     values["username"],
		Password:     values["password"],
		Authority:    strings.TrimRight(values["authority"], "/"),
	}

	switch strings.ToLower(values["authtype"]) {
	case "clientsecret":
		cs.AuthType = AuthClientSecret
	case "oauth", "office365":
		cs.AuthType = AuthOAuth
	case "":
		if cs.ClientSecret != "" && cs.Username == "" {
			cs.AuthType = AuthClientSecret
		} else {
			cs.AuthType = AuthOAuth
		}
	default:
		return nil, fmt.Errorf("%w: unsupported AuthType %q", ErrInvalidConnectionString, values["authtype"])
	}

	if err := cs.Validate(); err != nil {
		return nil, err
	}
	return cs, nil
}

// Validate checks that the fields required by the selected AuthType are present.
func (cs *ConnectionString) Validate() error {
	if cs.URL == "" {
		return fmt.Errorf("%w: Url is required", ErrInvalidConnectionString)
	}
	u, err := url.Parse(cs.URL)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return fmt.Errorf("%w: Url %q is not an absolute http(s) URL", ErrInvalidConnectionString, cs.URL)
	}
	if cs.ClientID == "" {
		return fmt.Errorf("%w: ClientId is required", ErrInvalidConnectionString)
	}

	switch cs.AuthType {
	case AuthClientSecret:
		if cs.ClientSecret == "" {
			return fmt.Errorf("%w: ClientSecret is required for AuthType=ClientSecret", ErrInvalidConnectionString)
		}
		if cs.TenantID == "" && cs.Authority == "" {
			return fmt.Errorf("%w: TenantId or Authority is required for AuthType=ClientSecret", ErrInvalidConnectionString)
		}
	case AuthOAuth:
		if cs.Username == "" || cs.Password == "" {
			return fmt.Errorf("%w: Username and Password are required for AuthType=OAuth", ErrInvalidConnectionString)
		}
	default:
		return fmt.Errorf("%w: unsupported AuthType %q", ErrInvalidConnectionString, cs.AuthType)
	}
	return nil
}

// TokenURL returns the OAuth2 token endpoint for this connection.
func (cs *ConnectionString) TokenURL() string {
	if cs.Authority != "" && cs.TenantID == "" {
		return cs.Authority + "/oauth2/v2.0/token"
	}
	authority := cs.Authority
	if authority == "" {
		authority = DefaultAuthority
	}
	tenant := cs.TenantID
	if tenant == "" {
		tenant = "organizations"
	}
	return authority + "/" + tenant + "/oauth2/v2.0/token"
}

// Scope returns the OAuth2 scope granting access to the organization.
func (cs *ConnectionString) Scope() string {
	return cs.URL + "/.default"
}

// String renders the connection without secrets, suitable for logs.
func (cs *ConnectionString) String() string {
	return fmt.Sprintf("AuthType=%s;Url=%s;ClientId=%s", cs.AuthType, cs.URL, cs.ClientID)
}

// splitSegments splits on ';' while keeping quoted values intact.
func splitSegments(raw string) ([]string, error) {
	var (
		segments []string
		current  strings.Builder
		quote    rune
	)
	for _, r := range raw {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			current.WriteRune(r)
		case r == ';':
			if s := strings.TrimSpace(current.String()); s != "" {
				segments = append(segments, s)
			}
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote", ErrInvalidConnectionString)
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		segments = append(segments, s)
	}
	return segments, nil
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// redactSegment keeps malformed-segment errors from echoing secrets.
func redactSegment(segment string) string {
	if len(segment) > 8 {
		return segment[:4] + "..."
	}
	return segment
}
