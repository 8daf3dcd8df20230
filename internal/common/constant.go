package common

// SessionMetadataKey is the gRPC metadata key that carries the session id on
// requests made by an authenticated client.
const SessionMetadataKey = "session_id"
