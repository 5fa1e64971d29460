// Package preflight checks documents locally before they are uploaded
// for analysis. It sniffs the content type from magic bytes, enforces
// the upload size limit, and inspects image EXIF metadata for privacy
// leaks such as GPS coordinates and device serial numbers.
package preflight
