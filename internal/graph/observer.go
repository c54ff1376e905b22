// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package graph

import "time"

// Observer receives the outcome of every remote call the gateway makes.
// Implementations must be safe for concurrent use.
type Observer interface {
	// ObserveWrite is called once per WriteTriples request.
	ObserveWrite(triples int, err error)
	// ObserveLink is called once per Link call, after all attempts.
	ObserveLink(err error)
	// ObserveQuery is called once per executed program. kind is "dataset",
	// "job" or "node".
	ObserveQuery(kind string, elapsed time.Duration, err error)
}

type observers []Observer

func (o observers) ObserveWrite(triples int, err error) {
	for _, obs := range o {
		obs.ObserveWrite(triples, err)
	}
}

func (o observers) ObserveLink(err error) {
	for _, obs := range o {
		obs.ObserveLink(err)
	}
}

func (o observers) ObserveQuery(kind string, elapsed time.Duration, err error) {
	for _, obs := range o {
		obs.ObserveQuery(kind, elapsed, err)
	}
}

// MultiObserver fans out to every non-nil observer.
func MultiObserver(list ...Observer) Observer {
	out := make(observers, 0, len(list))
	for _, o := range list {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}
