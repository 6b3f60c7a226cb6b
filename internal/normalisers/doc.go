// Package normalisers extracts text from uploaded files. Each normaliser
// handles a set of MIME types; the Registry picks the highest priority
// normaliser for a file, detecting its MIME type from the filename.
package normalisers
