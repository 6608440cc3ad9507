// Package container decodes and encodes the binary module container format.
//
// A container is a sequence of frames with no overall header, footer, version
// tag, or checksum:
//
//	container := frame*
//	frame     := flag:u8  length:u64(little-endian)  data:u8[length]
//	flag      := 0 (entry module) | 1 (preload-only module)
//
// End-of-input exactly between frames is the terminator; a zero-frame
// container is legal. Parsing is all-or-nothing: any truncation or hostile
// length field discards every record parsed so far and yields a typed
// *errors.Error carrying the zero-based index of the offending frame.
//
// The decoded Store is immutable and safe to share, read-only, across any
// number of execution contexts.
package container
