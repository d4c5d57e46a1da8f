// Package flac builds the command lines flacr sends to the external flac
// encoder and interprets its version banner.
//
// The encoder is treated as a black box identified by name: this package
// never decodes audio. It only knows the argument templates for the three
// invocations flacr needs (decode test, re-encode, version query) and which
// release introduced multi-threaded encoding.
package flac
