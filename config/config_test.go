package config

import (
	"testing"
	"time"
)

func TestGetEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("IMAGEVAULT_TEST_UNSET", "")
	if got := getEnv("IMAGEVAULT_TEST_UNSET", "fallback"); got != "fallback" {
		t.Fatalf("got %q, want %q", got, "fallback")
	}
}

func TestGetEnvUsesSetValue(t *testing.T) {
	t.Setenv("IMAGEVAULT_TEST_SET", "custom")
	if got := getEnv("IMAGEVAULT_TEST_SET", "fallback"); got != "custom" {
		t.Fatalf("got %q, want %q", got, "custom")
	}
}

func TestGetEnvIntInvalidFallsBackToDefault(t *testing.T) {
	t.Setenv("IMAGEVAULT_TEST_INT", "not-a-number")
	if got := getEnvInt("IMAGEVAULT_TEST_INT", 7); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
}

func TestGetEnvIntParsesValue(t *testing.T) {
	t.Setenv("IMAGEVAULT_TEST_INT", "42")
	if got := getEnvInt("IMAGEVAULT_TEST_INT", 7); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestGetEnvDurationParsesValue(t *testing.T) {
	t.Setenv("IMAGEVAULT_TEST_DURATION", "90s")
	if got := getEnvDuration("IMAGEVAULT_TEST_DURATION", time.Second); got != 90*time.Second {
		t.Fatalf("got %v, want %v", got, 90*time.Second)
	}
}

func TestGetEnvDurationListParsesCommaSeparated(t *testing.T) {
	t.Setenv("IMAGEVAULT_TEST_DELAYS", "10s, 30s ,2m")
	got := getEnvDurationList("IMAGEVAULT_TEST_DELAYS", nil)
	want := []time.Duration{10 * time.Second, 30 * time.Second, 2 * time.Minute}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestGetEnvDurationListInvalidFallsBackToDefault(t *testing.T) {
	t.Setenv("IMAGEVAULT_TEST_DELAYS_BAD", "not-a-duration")
	def := []time.Duration{5 * time.Second}
	got := getEnvDurationList("IMAGEVAULT_TEST_DELAYS_BAD", def)
	if len(got) != 1 || got[0] != 5*time.Second {
		t.Fatalf("got %v, want %v", got, def)
	}
}

func TestInitConfigAppliesDefaultVariants(t *testing.T) {
	InitConfig()
	if len(AppConfig.Variants) != 3 {
		t.Fatalf("len(Variants) = %d, want 3", len(AppConfig.Variants))
	}
	if AppConfig.Variants[0].Tag != "256" || AppConfig.Variants[0].LongestSide != 256 {
		t.Fatalf("first variant = %+v", AppConfig.Variants[0])
	}
}
