package ocireplicator

import (
	"encoding/json"
	"testing"

	godigest "github.com/opencontainers/go-digest"
)

func TestSynthesizeConfigBlob_ReplacesRootFS(t *testing.T) {
	v1Compat := `{"id":"abc","architecture":"amd64","os":"linux","parent":"def","container_config":{"Cmd":["sh"]}}`
	diffIDs := []godigest.Digest{
		godigest.FromString("layer-1"),
		godigest.FromString("layer-2"),
	}

	raw, err := synthesizeConfigBlob(v1Compat, diffIDs)
	if err != nil {
		t.Fatalf("synthesizeConfigBlob: %v", err)
	}

	var cfg map[string]any
	if err := json.Unmarshal(raw, &cfg); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}

	if _, ok := cfg["parent"]; ok {
		t.Error("expected parent to be dropped from the synthesised config")
	}
	if _, ok := cfg["container_config"]; ok {
		t.Error("expected container_config to be dropped from the synthesised config")
	}
	if cfg["architecture"] != "amd64" {
		t.Errorf("architecture = %v, want amd64", cfg["architecture"])
	}

	rootfs, ok := cfg["rootfs"].(map[string]any)
	if !ok {
		t.Fatalf("rootfs missing or wrong type: %v", cfg["rootfs"])
	}
	if rootfs["type"] != "layers" {
		t.Errorf("rootfs.type = %v, want layers", rootfs["type"])
	}
	ids, ok := rootfs["diff_ids"].([]any)
	if !ok || len(ids) != 2 {
		t.Fatalf("rootfs.diff_ids = %v, want 2 entries", rootfs["diff_ids"])
	}
	if ids[0] != diffIDs[0].String() {
		t.Errorf("diff_ids[0] = %v, want %s", ids[0], diffIDs[0])
	}
}
