// Package keys parses the quickstart credentials files that hold the agent
// and operator account keys.
//
// A credentials file is a JSON array with a single record:
//
//	[
//	    {
//	        "address": "0x...",
//	        "private_key": "0x..."
//	    }
//	]
//
// Earlier shell tooling extracted the two values by fixed line offsets, which
// silently produced garbage for any other formatting. This package parses the
// record explicitly and rejects malformed files with ErrMalformedKeyFile.
package keys
