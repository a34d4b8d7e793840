/*
Package environment manages named deployment environments.

Environments (development, staging, production) are stored as a JSON map
keyed by name in a single config file. The Registry loads, lists, creates,
and patches them; loading always re-reads and re-validates the file, and the
returned Environment value is threaded by the caller rather than cached on
the registry.

Error classification is strict: an unrecognized name is always an
environment-kind error, a missing config file is CONFIGURATION_MISSING, and
a present file whose named entry is absent or structurally invalid is
CONFIGURATION_READ_FAILED. Callers rely on this distinction.

MaskSensitive produces the display form of a variable set: values of keys
matching a sensitive-name heuristic collapse to first4...last4 (or *** when
short), everything else passes through.
*/
package environment
