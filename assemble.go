package ja4

import (
	"fmt"
	"strings"
)

// Fingerprint computes the fingerprint of the field set under the default
// policy. See FingerprintWithPolicy.
func (fs FieldSet) Fingerprint() Fingerprint {
	return fs.FingerprintWithPolicy(DefaultPolicy)
}

// FingerprintWithPolicy canonicalizes the field set and assembles its
// fingerprint string:
//
//	<prefix>_<cipher hash>_<extension hash>
//
// a fixed 10-character prefix and two 12-hex-character hash segments, 36
// characters in all. The prefix counts are taken after GREASE filtering. An
// empty canonical cipher or extension string yields the all-zero hash
// sentinel instead of a digest. Assembly itself cannot fail; a degraded
// field set simply produces a degraded fingerprint.
func (fs FieldSet) FingerprintWithPolicy(p Policy) Fingerprint {
	ciphers := filterGrease(fs.Ciphers)
	exts := filterGrease(fs.Extensions)

	sigAlgs := fs.SignatureAlgorithms
	if p.FilterSignatureAlgorithms {
		sigAlgs = filterGrease(sigAlgs)
	}

	prefix := assemblePrefix(fs, len(ciphers), len(exts))
	cipherHash := hash12(cipherCanonical(ciphers))
	extHash := hash12(extensionCanonical(exts, sigAlgs))

	return Fingerprint{
		Value:    prefix + segmentSep + cipherHash + segmentSep + extHash,
		Degraded: fs.Degraded,
	}
}

// assemblePrefix renders the fixed-width prefix segment: transport mode,
// version token, SNI presence, cipher count, extension count, ALPN
// characters. Counts are post-filter counts.
func assemblePrefix(fs FieldSet, cipherCount, extCount int) string {
	var b strings.Builder
	b.Grow(10)

	b.WriteByte(modeToken(fs.Mode))
	b.WriteString(versionToken(fs.NegotiatedVersion()))
	if fs.HasSNI() {
		b.WriteByte(sniPresentToken)
	} else {
		b.WriteByte(sniAbsentToken)
	}
	b.WriteString(countToken(cipherCount))
	b.WriteString(countToken(extCount))
	b.WriteString(alpnToken(fs.FirstALPN()))

	return b.String()
}

func countToken(n int) string {
	if n > maxCount {
		n = maxCount
	}
	return fmt.Sprintf("%02d", n)
}
