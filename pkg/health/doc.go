/*
Package health probes deployed services and classifies their state.

A probe runs up to two sequential endpoint tests: GET on the service root
expecting 200, and only if that passes, POST on a routed API path with an
empty payload expecting 400 or 401. The second expectation is deliberately
inverted: the probed endpoint enforces validation, so a rejection proves the
route is deployed and alive without exercising its function. Expected
statuses are always an explicit list, never hardcoded.

Overall classification:

	healthy     root answered 200
	unhealthy   root answered with another status
	unreachable the request failed before any response (DNS, connect, timeout)
	error       the request could not be constructed

Endpoint tests never return errors. Connection failures, timeouts, and
request-construction failures each resolve to an EndpointResult with status
code 0 and a descriptive error string, so orchestration branches on values
instead of recovering from panics or errors. Each request carries its own
timeout (30s default) and is aborted, never left pending.
*/
package health
