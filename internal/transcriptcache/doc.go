// Package transcriptcache persists finished transcripts keyed by media file
// fingerprint so unchanged videos are not transcribed twice.
//
// The cache is an orchestration-layer concern: the core pipeline stays
// stateless, and the CLI decides when to consult or bypass the store.
package transcriptcache
