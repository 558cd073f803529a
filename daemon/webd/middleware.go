package webd

import (
	"crypto/subtle"
	"fmt"
	ghandlers "github.com/gorilla/handlers"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
)

// tokenAuthenticationMiddlewareFunc checks for a valid token in the
// Authorization header, or else the api_token query parameter.
// An empty token allows all requests.
func tokenAuthenticationMiddlewareFunc(validToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validToken == "" {
				next.ServeHTTP(w, r)
				return
			}
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" {
				token = r.URL.Query().Get("api_token")
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(validToken)) != 1 {
				slog.Warn("Invalid token",
					"method", r.Method, "url", r.URL.Path, "remote-addr", r.RemoteAddr,
					"user-agent", r.UserAgent())
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func permissiveCorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Add("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
		w.Header().Add("Access-Control-Expose-Headers", strings.Join(countHeaders, ", "))
		next.ServeHTTP(w, r)
	})
}

func (s *WebDaemon) countingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

// writeLog writes a request line in Apache Common Log Format,
// with forwarded-for hops appended to the host.
func writeLog(writer io.Writer, params ghandlers.LogFormatterParams) {
	req := params.Request
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}
	for _, v := range req.Header.Values("X-Forwarded-For") {
		host += "->" + v
	}
	uri := req.RequestURI
	if uri == "" {
		uri = params.URL.RequestURI()
	}
	_, _ = fmt.Fprintf(writer, "%s - - [%s] %q %d %d\n",
		host,
		params.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
		req.Method+" "+uri+" "+req.Proto,
		params.StatusCode,
		params.Size)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return ghandlers.CustomLoggingHandler(os.Stdout, next, writeLog)
}
