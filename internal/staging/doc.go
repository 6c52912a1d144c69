// Package staging manages raw browser captures left in an output tree's tmp
// directory.
//
// A successful export deletes its raw capture; failed runs leave it behind for
// inspection. List reports what is there and CleanStale reclaims entries older
// than a cutoff.
package staging
