/*
Package credentials prepares service-account credentials for deployment.

The deployment target takes the Firebase service account as a single
environment variable, so the multi-line JSON key file must be reformatted
into one compact line. Format guarantees a round trip: parsing its output
yields the original object, unknown fields included, and the output never
contains raw newline characters.

ValidateStructure is a presence-only gate (weaker than the validator's full
shape check) run just before formatting. MaskSensitive produces the view
safe to print: the private key keeps only its first and last 30 characters.
*/
package credentials
