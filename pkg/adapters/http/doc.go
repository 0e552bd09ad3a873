// Package http serves an Arbor engine as a REST API on a chi router.
//
// The routes are described by the embedded openapi.yaml, which kin-openapi
// also uses to validate incoming requests. Engine errors map to status codes
// through StatusFor.
package http
