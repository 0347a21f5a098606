package model

import (
	"fmt"
	"time"
)

// RouteClass selects the egress vendor pool, for example "residential" or "datacenter".
type RouteClass string

// RouteCandidate is an unverified egress route returned by the vendor.
type RouteCandidate struct {
	Address   string
	Port      int
	Vendor    string
	ExpiresAt *time.Time
}

func (c RouteCandidate) HostPort() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

// URL renders the candidate as an HTTP proxy URL.
func (c RouteCandidate) URL() string {
	return "http://" + c.HostPort()
}

// ValidatedRoute is a candidate proven to carry traffic by the probe.
// It is owned by at most one task at any instant.
type ValidatedRoute struct {
	RouteCandidate
	// ObservedAddr is the external address seen by the probe through this route.
	ObservedAddr string
}
