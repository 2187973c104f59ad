package compile

import (
	"path/filepath"
	"reflect"
	"testing"

	"waste-bench/internal/variant"
)

func TestParseOptLevel_AcceptsRange(t *testing.T) {
	for level := 0; level <= 3; level++ {
		got, err := ParseOptLevel(level)
		if err != nil {
			t.Fatalf("level %d: unexpected error: %v", level, err)
		}
		if int(got) != level {
			t.Fatalf("level %d: got %d", level, got)
		}
	}
}

func TestParseOptLevel_RejectsOutOfRange(t *testing.T) {
	for _, level := range []int{-1, 4, 42} {
		if _, err := ParseOptLevel(level); err == nil {
			t.Fatalf("level %d: expected error", level)
		}
	}
}

func TestGCFlags_Mapping(t *testing.T) {
	cases := []struct {
		level OptLevel
		want  []string
	}{
		{0, []string{"-gcflags", "all=-N -l"}},
		{1, []string{"-gcflags", "all=-l"}},
		{2, nil},
		{3, []string{"-gcflags", "all=-B"}},
	}

	for _, c := range cases {
		got := c.level.GCFlags()
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("level %d: got %v, want %v", c.level, got, c.want)
		}
	}
}

func TestBuildArgs_ComposesBuildCommand(t *testing.T) {
	c := &Compiler{Binary: "go", BuildFlags: []string{"-trimpath"}, BinDir: "bin"}
	v := variant.Variant{Name: "basic", Dir: filepath.Join("variants", "basic")}

	got := c.buildArgs(v, OptLevel(0), filepath.Join("bin", "basic"))
	want := []string{"build", "-gcflags", "all=-N -l", "-trimpath", "-o", filepath.Join("bin", "basic"), "./variants/basic"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBuildArgs_DefaultLevelHasNoGCFlags(t *testing.T) {
	c := &Compiler{Binary: "go", BinDir: "bin"}
	v := variant.Variant{Name: "alarm", Dir: filepath.Join("variants", "alarm")}

	got := c.buildArgs(v, OptLevel(2), filepath.Join("bin", "alarm"))
	want := []string{"build", "-o", filepath.Join("bin", "alarm"), "./variants/alarm"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
