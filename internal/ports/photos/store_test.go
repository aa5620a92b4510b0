package photos

import "testing"

func TestRefRoundTrip(t *testing.T) {
	key, ok := KeyFromRef(Ref("photos/x.jpg"))
	if !ok || key != "photos/x.jpg" {
		t.Fatalf("expected photos/x.jpg, got %q ok=%v", key, ok)
	}

	for _, ref := range []string{"assets/images/cat1.png", "blob:", ""} {
		if _, ok := KeyFromRef(ref); ok {
			t.Fatalf("%q should not be a stored photo", ref)
		}
	}
}
