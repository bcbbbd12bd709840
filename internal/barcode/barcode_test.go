package barcode

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/halalsnap/halalsnap/internal/verdict"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL + "/"})
	return c
}

func productJSON(name, labels, ingredients string) string {
	return fmt.Sprintf(`{
		"status": 1,
		"product": {
			"product_name": %q,
			"labels_tags": [%q],
			"ingredients_text": %q,
			"countries": "France"
		}
	}`, name, labels, ingredients)
}

func TestLookupHalalLabel(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3017620422003.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, productJSON("Chicken Stock", "en:halal", "chicken, water, salt"))
	})

	rec, err := c.Lookup(context.Background(), "3017620422003")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if rec.Status != verdict.StatusCompliant {
		t.Errorf("status = %q, want %q", rec.Status, verdict.StatusCompliant)
	}
	if rec.ConfidenceScore != 100 {
		t.Errorf("confidence = %d, want 100", rec.ConfidenceScore)
	}
	if rec.Certification != "Database Verified" {
		t.Errorf("certification = %q", rec.Certification)
	}
	if len(rec.Ingredients) != 3 {
		t.Errorf("ingredients = %v, want 3 items", rec.Ingredients)
	}
}

func TestLookupForbiddenIngredient(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, productJSON("Pâté", "en:organic", "pork meat, salt, spices"))
	})

	rec, err := c.Lookup(context.Background(), "123")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if rec.Status != verdict.StatusNonCompliant {
		t.Errorf("status = %q, want %q", rec.Status, verdict.StatusNonCompliant)
	}
}

func TestLookupNoLabelIsQuestionable(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, productJSON("Biscuits", "en:organic", "flour, sugar, emulsifier e471"))
	})

	rec, err := c.Lookup(context.Background(), "123")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if rec.Status != verdict.StatusQuestionable {
		t.Errorf("status = %q, want %q", rec.Status, verdict.StatusQuestionable)
	}
}

func TestLookupNotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": 0}`)
	})

	_, err := c.Lookup(context.Background(), "000")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLookupServerError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Lookup(context.Background(), "123")
	if err == nil {
		t.Fatal("expected error for upstream failure")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("upstream failure must not be reported as not-found")
	}
}
