package config

import (
	"net/url"
	"strings"

	"livechat/pkg/exception"

	"github.com/yanun0323/errors"
)

// Endpoint derives the websocket address for identity from the REST base URL:
// http becomes ws, https becomes wss, path is appended and identity is passed as userId.
func Endpoint(baseURL, path, identity string) (string, error) {
	if identity == "" {
		return "", errors.Wrap(exception.ErrInvalidArgument, "empty identity")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", errors.Wrap(exception.ErrWebSocketEndpoint, err.Error())
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", errors.Wrapf(exception.ErrWebSocketEndpoint, "unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.Wrap(exception.ErrWebSocketEndpoint, "missing host")
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawPath = ""
	q := u.Query()
	q.Set("userId", identity)
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String(), nil
}
