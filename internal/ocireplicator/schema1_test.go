package ocireplicator

import (
	"encoding/json"
	"testing"
)

func TestConvertSchema1ToV2_ReversesLayerOrder(t *testing.T) {
	raw, err := json.Marshal(map[string]any{
		"schemaVersion": 1,
		"name":          "library/busybox",
		"tag":           "latest",
		"fsLayers": []map[string]string{
			{"blobSum": "sha256:2222222222222222222222222222222222222222222222222222222222222222"},
			{"blobSum": "sha256:1111111111111111111111111111111111111111111111111111111111111111"},
		},
		"history": []map[string]string{
			{"v1Compatibility": `{"id":"abc","architecture":"amd64","os":"linux"}`},
		},
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	converted, err := convertSchema1ToV2(raw)
	if err != nil {
		t.Fatalf("convertSchema1ToV2: %v", err)
	}

	if len(converted.manifest.Layers) != 2 {
		t.Fatalf("got %d layers, want 2", len(converted.manifest.Layers))
	}
	if got := converted.manifest.Layers[0].Digest.String(); got != "sha256:1111111111111111111111111111111111111111111111111111111111111111" {
		t.Errorf("base layer = %s, want the fsLayers[1] entry (schema-1 is top-first)", got)
	}
	if converted.v1CompatibilityJSON == "" {
		t.Error("expected v1CompatibilityJSON to be carried through for later synthesis")
	}
}

func TestConvertSchema1ToV2_NoHistoryIsError(t *testing.T) {
	raw := []byte(`{"schemaVersion":1,"fsLayers":[],"history":[]}`)
	if _, err := convertSchema1ToV2(raw); err == nil {
		t.Error("expected error for manifest with no history entries")
	}
}
