// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides record IDs, share tokens, and session verification.

# Share Tokens

A share token is the event ID sealed with XChaCha20-Poly1305 under a key
derived (HKDF-SHA256) from SHARE_TOKEN_SECRET:

	codec, err := auth.NewShareCodec(secret)
	token, err := codec.Encode(eventID)
	eventID, err := codec.Decode(token)

Tokens are raw URL-safe base64 of nonce || ciphertext || tag. Decoding is
strict: a flipped character or a truncated token returns ErrInvalidToken
rather than a different ID. Decoding only proves the token was minted by
this server; whether it still grants access is decided by comparing it to
the token stored on a public event.

# Sessions

Registered users arrive with an HS256 JWT minted by the account service:

	verifier := auth.NewSessionVerifier(secret)
	userID, err := verifier.Verify(bearerToken)

IssueSession mints the same kind of token for tests and local tooling.

# ID Generation

	id := auth.NewID() // random UUID
*/
package auth
