package hashcache_test

import (
	"testing"

	"github.com/ardanlabs/poichain/foundation/blockchain/hashcache"
	"github.com/ardanlabs/poichain/foundation/blockchain/primitive"
	"github.com/ardanlabs/poichain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_HashCache(t *testing.T) {
	t.Log("Given the need to remember confirmed transaction hashes.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a cache of two hashes.", testID)
		{
			c, err := hashcache.New(2)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct a cache: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to construct a cache.", success, testID)

			h1 := signature.Sum([]byte("one"))
			h2 := signature.Sum([]byte("two"))
			h3 := signature.Sum([]byte("three"))

			c.Put(h1, 1)
			c.Put(h2, 2)

			if !c.AnyHashExists(h3, h2) {
				t.Fatalf("\t%s\tTest %d:\tShould find an existing hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould find an existing hash.", success, testID)

			height, exists := c.Height(h1)
			if !exists || height != primitive.Height(1) {
				t.Fatalf("\t%s\tTest %d:\tShould record the height : got %d, exp %d", failed, testID, height, 1)
			}
			t.Logf("\t%s\tTest %d:\tShould record the height.", success, testID)

			c.Put(h3, 3)
			if c.Contains(h1) || c.Len() != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould evict the oldest hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould evict the oldest hash.", success, testID)

			c.Remove(h2, h3)
			if c.AnyHashExists(h1, h2, h3) {
				t.Fatalf("\t%s\tTest %d:\tShould forget removed hashes.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould forget removed hashes.", success, testID)
		}
	}
}
