package signature_test

import (
	"testing"

	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

// =============================================================================

func Test_Signing(t *testing.T) {
	t.Log("Given the need to sign and verify data.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a known private key.", testID)
		{
			kp, err := signature.KeyPairFromHex(pkHexKey)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct a key pair: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to construct a key pair.", success, testID)

			data := []byte("transfer 15 units")
			sig, err := signature.Sign(data, kp)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to sign data: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to sign data.", success, testID)

			if len(sig) != signature.Length {
				t.Fatalf("\t%s\tTest %d:\tShould produce a %d byte signature, got %d.", failed, testID, signature.Length, len(sig))
			}
			t.Logf("\t%s\tTest %d:\tShould produce a %d byte signature.", success, testID, signature.Length)

			if !signature.Verify(data, kp.PublicKey, sig) {
				t.Fatalf("\t%s\tTest %d:\tShould be able to verify the signature.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to verify the signature.", success, testID)

			if signature.Verify([]byte("transfer 16 units"), kp.PublicKey, sig) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the signature for altered data.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the signature for altered data.", success, testID)

			other, err := signature.GenerateKeyPair()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to generate a key pair: %s", failed, testID, err)
			}

			if signature.Verify(data, other.PublicKey, sig) {
				t.Fatalf("\t%s\tTest %d:\tShould reject the signature for another key.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the signature for another key.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen signing without a private key.", testID)
		{
			kp, _ := signature.KeyPairFromHex(pkHexKey)
			pub := signature.KeyPair{PublicKey: kp.PublicKey}

			if _, err := signature.Sign([]byte("data"), pub); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not be able to sign.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not be able to sign.", success, testID)
		}
	}
}

func Test_Hash(t *testing.T) {
	t.Log("Given the need to hash data consistently.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen hashing the same value twice.", testID)
		{
			h1 := signature.Sum([]byte("Bill"))
			h2 := signature.Sum([]byte("Bi"), []byte("ll"))

			if h1 != h2 {
				t.Fatalf("\t%s\tTest %d:\tShould get back the same hash for split data.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the same hash for split data.", success, testID)

			parsed, err := signature.HashFromHex(h1.String())
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to parse the hex form: %s", failed, testID, err)
			}

			if parsed != h1 {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, parsed)
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, h1)
				t.Fatalf("\t%s\tTest %d:\tShould get back the same hash from hex.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the same hash from hex.", success, testID)
		}
	}
}

func Test_PublicKeyHex(t *testing.T) {
	kp, err := signature.KeyPairFromHex(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to construct a key pair: %s", err)
	}

	pk, err := signature.PublicKeyFromHex(kp.PublicKey.String())
	if err != nil {
		t.Fatalf("Should be able to parse the public key: %s", err)
	}

	if !pk.Equal(kp.PublicKey) {
		t.Logf("got: %s", pk)
		t.Logf("exp: %s", kp.PublicKey)
		t.Fatalf("Should get back the same public key.")
	}

	if _, err := signature.PublicKeyFromHex("0x0102"); err == nil {
		t.Fatalf("Should reject a malformed public key.")
	}
}
