// Package stage moves built stage files and profile tarballs in and out of
// object storage.
//
// Buckets are addressed by gocloud URL (file://, s3://, gs://, mem:// in
// tests) and opened by the caller, so this package stays driver-agnostic.
package stage
