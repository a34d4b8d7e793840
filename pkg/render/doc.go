/*
Package render generates the Render platform service descriptor.

A Blueprint is the render.yaml document: a services list with one web
service per deployment, carrying the service name, region, plan, build and
start commands, health check path, and the environment variable set. The
credential variable is always emitted as {key, sync: false} so the secret
blob is supplied manually in the platform dashboard and never written into
the generated file. Variables are sorted by key so regenerating the file
produces stable diffs.
*/
package render
