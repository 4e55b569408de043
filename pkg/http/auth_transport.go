package http

import "net/http"

// authTransport injects the credential header expected by the endpoint
// family: managed-compute hosts take "Authorization: Bearer", hosted
// inference and embedding endpoints take "api-key".
type authTransport struct {
	header    string
	value     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.value != "" {
		reqCopy.Header.Set(t.header, t.value)
	}

	return t.transport.RoundTrip(reqCopy)
}

func WithAuthToken(token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			header:    "Authorization",
			value:     bearerValue(token),
			transport: rt,
		}
	})
}

func WithAPIKeyHeader(key string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			header:    "api-key",
			value:     key,
			transport: rt,
		}
	})
}

func bearerValue(token string) string {
	if token == "" {
		return ""
	}
	return "Bearer " + token
}
