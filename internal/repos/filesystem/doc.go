// Package filesystem exposes the filesystem seam shared by repository discovery, lifecycle, and setup.
package filesystem
