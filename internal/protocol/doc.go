// Package protocol owns the gridd envelope and its frame marshalling.
//
// Ownership boundary:
// - envelope shape shared by requests and replies
// - envelope<->frame marshalling (frame + tlv subpackages)
// - schema validation entry points
package protocol
