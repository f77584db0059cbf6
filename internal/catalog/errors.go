package catalog

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// FailureKind tells users why a catalog could not be reached.
type FailureKind string

const (
	FailureNone    FailureKind = ""
	FailureSlow    FailureKind = "slow"
	FailureOffline FailureKind = "offline"
	FailureUnknown FailureKind = "unknown"
)

type statusCoder interface {
	StatusCode() int
}

// Classify maps a catalog error to a FailureKind. Only gateway timeouts,
// client timeouts and host resolution failures are distinguishable.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	var sc statusCoder
	if errors.As(err, &sc) && sc.StatusCode() == http.StatusGatewayTimeout {
		return FailureSlow
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureSlow
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureSlow
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureOffline
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "504"), strings.Contains(msg, "timeout"):
		return FailureSlow
	case strings.Contains(msg, "no such host"), strings.Contains(msg, "unable to resolve host"):
		return FailureOffline
	default:
		return FailureUnknown
	}
}

// ClassifyResults picks the kind that best explains a set of failed
// results: offline beats slow beats unknown.
func ClassifyResults(results []Result) FailureKind {
	kind := FailureNone
	for _, r := range results {
		if r.Status != StatusFailed {
			continue
		}
		switch k := Classify(r.Err); {
		case k == FailureOffline:
			return FailureOffline
		case k == FailureSlow:
			kind = FailureSlow
		case kind == FailureNone:
			kind = k
		}
	}
	return kind
}
