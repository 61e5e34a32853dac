package model

import "testing"

func TestComponentIdentity_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      ComponentIdentity
		wantErr bool
	}{
		{"valid", ComponentIdentity{Name: "github.com/acme/app", Version: "1.0.0"}, false},
		{"missing name", ComponentIdentity{Version: "1.0.0"}, true},
		{"missing version", ComponentIdentity{Name: "github.com/acme/app"}, true},
		{"empty", ComponentIdentity{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestComponentIdentity_String(t *testing.T) {
	id := ComponentIdentity{Name: "github.com/acme/app", Version: "1.0.0"}
	if id.String() != "github.com/acme/app:1.0.0" {
		t.Errorf("String() = %q", id.String())
	}
}

func TestComponentIdentity_SemverVersion(t *testing.T) {
	id := ComponentIdentity{Name: "app", Version: "1.2.3"}
	v, err := id.SemverVersion()
	if err != nil {
		t.Fatalf("SemverVersion: %v", err)
	}
	if v.String() != "1.2.3" {
		t.Errorf("version = %q", v.String())
	}
}
