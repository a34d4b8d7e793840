/*
Package vcs resolves version-control metadata for deployment records.

The history ledger stamps every deployment with the current commit, branch,
and git user email. These lookups are strictly best-effort: git being
missing, the directory not being a repository, or any subprocess failure
degrades to empty values (or "unknown" for the user), never to an error.
The Collector interface keeps the subprocess boundary out of the core so
tests substitute Static metadata.
*/
package vcs
