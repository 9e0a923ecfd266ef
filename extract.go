package auth

// ClaimFromCookieHeader turns the raw Cookie request header into a
// decoded claim. It checks, in order, that the header is present, that
// it carries the claim's cookie and that the token decodes. The first two
// failures are ErrTokenNotFound, the last ErrInvalidToken.
func ClaimFromCookieHeader[T any, P claimsPtr[T]](codec *ClaimCodec, header string) (P, error) {
	if header == "" {
		return nil, ErrTokenNotFound
	}

	name := P(new(T)).CookieName()

	token, ok := ExtractCookieValue(header, name)
	if !ok {
		return nil, ErrTokenNotFound
	}

	return Decode[T, P](codec, token)
}

// AuthorizationClaimFromHeader extracts the session claim from a Cookie
// header.
func AuthorizationClaimFromHeader(codec *ClaimCodec, header string) (*AuthorizationClaim, error) {
	return ClaimFromCookieHeader[AuthorizationClaim](codec, header)
}

// PasswordResetClaimFromHeader extracts the reset claim from a Cookie
// header.
func PasswordResetClaimFromHeader(codec *ClaimCodec, header string) (*PasswordResetClaim, error) {
	return ClaimFromCookieHeader[PasswordResetClaim](codec, header)
}
