// Package chat answers questions about the meeting archive with
// retrieval-augmented chat.
//
// Each question is embedded and matched against the vector index; the
// nearest paragraphs are injected into the model's context together with a
// sliding window of the session's recent history. Sessions are persisted in
// the message repository, so a conversation picks up where it left off
// across process restarts.
package chat
