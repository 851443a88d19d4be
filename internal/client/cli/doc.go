// Package cli implements the captionly command-line client.
//
// Usage:
//
//	client [-c file] [-a url] [-t seconds] <command> [args]
//
// Commands:
//   - register, login: prompt for credentials and store the session token
//   - logout: forget the stored session
//   - caption FILE: preview a caption for an image
//   - post FILE: publish an image as a captioned post
package cli
