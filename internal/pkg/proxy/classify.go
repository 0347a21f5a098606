package proxy

import (
	"context"
	"net"
	"strings"
	"syscall"

	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

// statusProvider is implemented by structured backend errors.
type statusProvider interface {
	StatusCode() int
}

// Substrings associated with route-level failures. A fallback only,
// structured status and error codes are checked first.
var (
	transportSubstrings = []string{ // nolint: gochecknoglobals
		"tls", "handshake", "certificate",
		"socket", "disconnect", "broken pipe",
		"proxy", "tunnel",
		"connection reset", "connection refused", "connection aborted",
		"dns", "resolve", "lookup", "no such host",
	}
	noStatusSubstrings = []string{ // nolint: gochecknoglobals
		"connect", "timeout", "timed out", "unreachable", "network",
	}
)

// Classify reports whether the error is a transport-layer failure, so the
// route itself is bad and should be switched. Business rejections return false.
func Classify(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation is an orchestration signal, not a bad route
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Recognized low-level connection errors
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{
		syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ECONNABORTED,
		syscall.ETIMEDOUT, syscall.EHOSTUNREACH, syscall.ENETUNREACH,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	// Structured status: 5xx and absent/zero status are route-level,
	// 4xx is a business rejection
	statusKnown := false
	var withStatus statusProvider
	if errors.As(err, &withStatus) {
		status := withStatus.StatusCode()
		if status >= 500 || status == 0 {
			return true
		}
		statusKnown = true
	}

	// Substring heuristic, see the package doc for its limits
	msg := strings.ToLower(err.Error())
	for _, s := range transportSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	if !statusKnown {
		for _, s := range noStatusSubstrings {
			if strings.Contains(msg, s) {
				return true
			}
		}
	}

	return false
}
