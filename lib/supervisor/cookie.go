// Copyright 2026 The Neptune Core Wallet Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import "regexp"

// The node's cookie is 32 random bytes, lowercase hex. The companion
// prints it on stdout surrounded by arbitrary human-readable text.
var cookiePattern = regexp.MustCompile(`\b[0-9a-f]{64}\b`)

// extractCookie pulls the readiness cookie out of the companion's
// one-shot stdout. No match means the node is not ready yet, never an
// error. Kept as its own function so the extraction strategy can change
// without touching the retry loop.
func extractCookie(output string) (string, bool) {
	match := cookiePattern.FindString(output)
	if match == "" {
		return "", false
	}
	return match, true
}
