package config

import "testing"

func TestSetAndGetConfig(t *testing.T) {
	orig := GetConfig()
	defer SetConfig(orig)

	cfg := NewDefaultConfig()
	SetConfig(cfg)

	if got := GetConfig(); got != cfg {
		t.Errorf("GetConfig() = %p, want %p", got, cfg)
	}
}

func TestMustGetConfigPanicsWhenUnset(t *testing.T) {
	orig := GetConfig()
	defer SetConfig(orig)

	SetConfig(nil)

	defer func() {
		if recover() == nil {
			t.Error("MustGetConfig() did not panic with nil config")
		}
	}()
	MustGetConfig()
}
