// Package cookie sets and reads HTTP cookies with optional HMAC signing or
// AES-256-GCM encryption.
//
// Secrets must be at least 32 characters. Several secrets may be configured
// for rotation: the first signs and encrypts, all of them are tried when
// reading. Encryption keys are derived from the secrets with HKDF-SHA256.
//
//	m, err := cookie.New([]string{secret}, cookie.WithSecure(true))
//	if err != nil {
//		return err
//	}
//
//	_ = m.SetSigned(w, "token", bearer, cookie.WithMaxAge(3600))
//	bearer, err := m.GetSigned(r, "token")
package cookie
