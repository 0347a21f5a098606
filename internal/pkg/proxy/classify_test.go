package proxy

import (
	"context"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ticketrush/ticketrush/internal/pkg/proto"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		err         error
		isTransport bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"server error", &proto.APIError{Status: 502, Message: "bad gateway"}, true},
		{"missing status", &proto.APIError{Status: 0, Message: "whatever"}, true},
		{"business rejection", &proto.APIError{Status: 400, Message: "selection is not available"}, false},
		{"duplicate rejection", &proto.APIError{Status: 409, Code: proto.CodeDuplicate, Message: "already applied"}, false},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset wrapped", errors.PrefixError(syscall.ECONNRESET, "submit call failed"), true},
		{"dns error", &net.DNSError{Err: "no such host", Name: "backend.local"}, true},
		{"tls wording", errors.New("remote error: tls: handshake failure"), true},
		{"proxy wording", errors.New("proxyconnect tcp: dial tcp: i/o timeout"), true},
		{"timeout wording without status", errors.New("dial tcp 10.0.0.1:8080: i/o timeout"), true},
		{"timeout wording inside 4xx message", &proto.APIError{Status: 400, Message: "session timeout, log in again"}, false},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, c.isTransport, Classify(c.err), c.name)
		})
	}
}
