package http

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/canopy/api"
)

// The handlers are written by hand, so the embedded contract is validated
// here to keep it honest.
func TestOpenAPISpec_IsValid(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(api.Spec)
	if err != nil {
		t.Fatalf("failed to load embedded spec: %v", err)
	}

	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("embedded spec is invalid: %v", err)
	}

	for _, path := range []string{
		"/tree",
		"/tree/visible",
		"/sessions/{sessionId}/activate",
		"/sessions/{sessionId}/merge",
		"/events",
	} {
		if doc.Paths.Find(path) == nil {
			t.Errorf("spec is missing path %s", path)
		}
	}
}
