// ABOUTME: Tests for the detection rule registry: coverage, matching, key sizes.
// ABOUTME: Exercises each rule against realistic source lines from several languages.

package registry

import (
	"testing"

	"github.com/arcqubit/pqcaudit/internal/types"
)

func TestEveryPrimitiveHasExactlyOneRule(t *testing.T) {
	reg := New()
	counts := make(map[types.Primitive]int)
	for _, rule := range reg.Rules() {
		counts[rule.Primitive]++
	}
	for _, p := range types.AllPrimitives {
		if counts[p] != 1 {
			t.Errorf("%s has %d rules, want 1", p, counts[p])
		}
	}
}

func TestRuleForReturnsMatchingRule(t *testing.T) {
	reg := New()
	for _, p := range types.AllPrimitives {
		rule, ok := reg.RuleFor(p)
		if !ok {
			t.Fatalf("RuleFor(%s) not found", p)
		}
		if rule.Primitive != p {
			t.Errorf("RuleFor(%s).Primitive = %s", p, rule.Primitive)
		}
		if rule.Recommendation == "" {
			t.Errorf("%s rule has empty recommendation", p)
		}
	}

	if _, ok := reg.RuleFor(types.Primitive(99)); ok {
		t.Error("RuleFor(unknown) should return false")
	}
}

func TestRuleMatching(t *testing.T) {
	cases := []struct {
		primitive types.Primitive
		line      string
		match     bool
	}{
		{types.RSA, "key = RSA.generate(2048)", true},
		{types.RSA, "KeyPairGenerator.getInstance(\"RSA\")", true},
		{types.RSA, "let key = openssl_rsa_keygen(bits);", true},
		{types.RSA, "let answer = compute(42);", false},
		{types.ECDSA, "sig = ecdsa.Sign(priv, digest)", true},
		{types.ECDSA, "curve = secp256k1()", true},
		{types.ECDSA, "EC.generate_key('prime256v1')", true},
		{types.ECDH, "shared = ECDH.compute(pub, priv)", true},
		{types.ECDH, "key = curve25519.ScalarMult(a, b)", true},
		{types.DSA, "key = DSA.generate(1024)", true},
		{types.DSA, "Digital Signature Algorithm implementation", true},
		{types.DiffieHellman, "params = DiffieHellman.new(2048)", true},
		{types.DiffieHellman, "diffie hellman exchange", true},
		{types.DiffieHellman, "cipher suite: DHE-RSA-AES256", true},
		{types.SHA1, "h = hashlib.sha1()", true},
		{types.SHA1, "digest = SHA-1 checksum", true},
		{types.SHA1, "h = sha256.New()", false},
		{types.MD5, "crypto.createHash('md5')", true},
		{types.MD5, "import hashlib", false},
		{types.DES, "cipher = des.NewCipher(key)", true},
		{types.DES, "DES encryption in CBC mode", true},
		{types.DES, "describe('encryption', () => {", false},
		{types.TripleDES, "Cipher.getInstance(\"DESede/CBC/PKCS5Padding\")", true},
		{types.TripleDES, "c = triple_des_encrypt(data)", false},
		{types.TripleDES, "alg = '3DES'", true},
		{types.RC4, "stream = rc4.NewCipher(key)", true},
		{types.RC4, "cipher: arcfour", true},
	}

	reg := New()
	for _, c := range cases {
		rule, ok := reg.RuleFor(c.primitive)
		if !ok {
			t.Fatalf("no rule for %s", c.primitive)
		}
		if _, got := rule.Match(c.line); got != c.match {
			t.Errorf("%s rule Match(%q) = %v, want %v", c.primitive, c.line, got, c.match)
		}
	}
}

func TestMatchColumnIsEarliestOffset(t *testing.T) {
	reg := New()
	rule, _ := reg.RuleFor(types.MD5)

	col, ok := rule.Match("    h = md5(x) or MD5(y)")
	if !ok {
		t.Fatal("expected match")
	}
	if col != 8 {
		t.Errorf("column = %d, want 8", col)
	}
}

func TestRSAKeySizeExtraction(t *testing.T) {
	reg := New()
	rule, _ := reg.RuleFor(types.RSA)
	if rule.KeySize == nil {
		t.Fatal("RSA rule has no key-size extractor")
	}

	cases := []struct {
		line string
		want string
	}{
		{"RSA.generate(1024)", "1024"},
		{"rsa_keygen(bits=4096)", "4096"},
		{"KeyPairGenerator rsa 2048 bits", "2048"},
	}
	for _, c := range cases {
		m := rule.KeySize.FindStringSubmatch(c.line)
		if m == nil {
			t.Errorf("no key size in %q", c.line)
			continue
		}
		if m[1] != c.want {
			t.Errorf("key size in %q = %s, want %s", c.line, m[1], c.want)
		}
	}

	if m := rule.KeySize.FindStringSubmatch("RSA.generate()"); m != nil {
		t.Errorf("unexpected key size match: %v", m)
	}
}

func TestOnlyRSAHasKeySizeExtractor(t *testing.T) {
	for _, rule := range New().Rules() {
		hasExtractor := rule.KeySize != nil
		if wantExtractor := rule.Primitive == types.RSA; hasExtractor != wantExtractor {
			t.Errorf("%s KeySize extractor presence = %v, want %v", rule.Primitive, hasExtractor, wantExtractor)
		}
	}
}
