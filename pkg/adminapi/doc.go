// Package adminapi is a client SDK for the Brain Hope admin API.
//
// The upstream contract is loose in two ways this package has to absorb.
// The login endpoint's accepted request encoding is unknown, so Login probes
// a fixed list of encodings until one is diagnostic (see negotiate.go). The
// response payloads nest their data in one of several shapes, so the package
// normalizes token payloads (ExtractTokenInfo), role fields (ExtractRoles)
// and list envelopes (UnwrapList) instead of binding to fixed structs.
//
// Authenticated calls go through a Session, which injects the bearer token
// and performs a single refresh-and-retry when the upstream answers 401.
package adminapi
